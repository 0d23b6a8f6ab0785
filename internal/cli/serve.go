package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relock/internal/server"
	"github.com/matzehuels/relock/pkg/cache"
	"github.com/matzehuels/relock/pkg/relock"
	"github.com/matzehuels/relock/pkg/snapshot"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relock HTTP service",
		Long: `Serve exposes the relock pipeline over HTTP. The result cache uses Redis
when cache.redis_addr is configured and the local file cache otherwise;
snapshots persist to MongoDB when server.mongo_uri is configured and to local
files otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cch, err := c.serveCache(ctx)
	if err != nil {
		return err
	}
	store, err := c.serveStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	runner := relock.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	if addr == "" {
		addr = c.Config.Server.Addr
	}
	srv := server.New(server.Config{Addr: addr}, runner, store, c.Logger)
	return srv.ListenAndServe(ctx)
}

func (c *CLI) serveCache(ctx context.Context) (cache.Cache, error) {
	if redisAddr := c.Config.Cache.RedisAddr; redisAddr != "" {
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     redisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	}
	return c.newCache(false)
}

func (c *CLI) serveStore(ctx context.Context) (snapshot.Store, error) {
	if uri := c.Config.Server.MongoURI; uri != "" {
		c.Logger.Info("using mongodb snapshot store", "database", c.Config.Server.MongoDatabase)
		return snapshot.NewMongoStore(ctx, snapshot.MongoConfig{
			URI:        uri,
			Database:   c.Config.Server.MongoDatabase,
			Collection: c.Config.Server.MongoCollection,
		})
	}
	// Same store the run command consults for previous snapshots.
	return snapshot.NewFileStore("")
}
