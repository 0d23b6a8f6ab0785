package relock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relock/pkg/cache"
	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/hoist"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/locktree"
	"github.com/matzehuels/relock/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Options are the inputs of one relock run.
type Options struct {
	// Previous is the committed lock snapshot whose resolutions should be
	// preserved where ranges are stable.
	Previous *lockfile.Snapshot

	// Current is the freshly generated lock snapshot.
	Current *lockfile.Snapshot

	// ProjectModules are regular expressions naming local packages that are
	// always re-examined regardless of range stability.
	ProjectModules []string

	// Refresh bypasses the result cache.
	Refresh bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Validate checks that the options name both inputs over the same project.
func (o *Options) Validate() error {
	if o.Previous == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no previous snapshot")
	}
	if o.Current == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no current snapshot")
	}
	if err := o.Previous.Validate(); err != nil {
		return err
	}
	if err := o.Current.Validate(); err != nil {
		return err
	}
	if o.Previous.Name != o.Current.Name {
		return errors.New(errors.ErrCodeInvalidInput,
			"snapshots name different projects: %q vs %q", o.Previous.Name, o.Current.Name)
	}
	return nil
}

// Stats collects timing and size information for one run.
type Stats struct {
	BuildTime    time.Duration `json:"build_time"`
	DiffTime     time.Duration `json:"diff_time"`
	HoistTime    time.Duration `json:"hoist_time"`
	AssembleTime time.Duration `json:"assemble_time"`

	PreviousNodes int `json:"previous_nodes"`
	CurrentNodes  int `json:"current_nodes"`
	PlacedNodes   int `json:"placed_nodes"`
	Cycles        int `json:"cycles"`
}

// CacheInfo reports whether the result came from cache.
type CacheInfo struct {
	Hit bool `json:"hit"`
}

// Result is the output of one relock run.
type Result struct {
	// Lockfile is the assembled output document.
	Lockfile *lockfile.Lockfile

	// Output is the deterministic encoding of Lockfile.
	Output []byte

	// Decisions is the differ's decision log, empty on a cache hit.
	Decisions []Decision

	Stats     Stats
	CacheInfo CacheInfo
}

// cachedResult is the cache representation of a finished run.
type cachedResult struct {
	Lockfile  *lockfile.Lockfile `json:"lockfile"`
	Decisions []Decision         `json:"decisions,omitempty"`
}

// Relock runs the complete build → diff → hoist → assemble pipeline.
func (r *Runner) Relock(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	matcher, err := NewMatcher(opts.ProjectModules)
	if err != nil {
		return nil, err
	}

	cacheKey, err := r.resultKey(opts)
	if err != nil {
		return nil, err
	}
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "result")
				output, err := lockfile.Marshal(cached.Lockfile)
				if err == nil {
					logger.Debug("result cache hit", "key", cacheKey)
					return &Result{
						Lockfile:  cached.Lockfile,
						Output:    output,
						Decisions: cached.Decisions,
						CacheInfo: CacheInfo{Hit: true},
					}, nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "result")
	}

	result := &Result{}
	store := locktree.NewVersionStore()

	// Stage 1: Build both canonical trees. The previous tree is built first
	// so that on a shared name@version the current snapshot's metadata wins
	// in the version store.
	buildStart := time.Now()
	prevRoot, err := r.build(ctx, "previous", opts.Previous, store, result, logger)
	if err != nil {
		return nil, err
	}
	currRoot, err := r.build(ctx, "current", opts.Current, store, result, logger)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.PreviousNodes = prevRoot.Count()
	result.Stats.CurrentNodes = currRoot.Count()

	logger.Info("built canonical trees",
		"previous_nodes", result.Stats.PreviousNodes,
		"current_nodes", result.Stats.CurrentNodes,
		"cycles", result.Stats.Cycles,
		"duration", result.Stats.BuildTime)

	// Stage 2: Diff
	diffStart := time.Now()
	observability.Pipeline().OnDiffStart(ctx)
	differ := NewDiffer(matcher)
	mixed, err := differ.Diff(prevRoot, currRoot)
	result.Stats.DiffTime = time.Since(diffStart)
	observability.Pipeline().OnDiffComplete(ctx, len(differ.Decisions()), result.Stats.DiffTime, err)
	if err != nil {
		return nil, err
	}
	result.Decisions = differ.Decisions()

	logger.Info("diffed trees",
		"decisions", len(result.Decisions),
		"duration", result.Stats.DiffTime)

	// Stage 3: Hoist
	hoistStart := time.Now()
	observability.Pipeline().OnHoistStart(ctx, mixed.Count())
	placement, err := hoist.Hoist(mixed)
	result.Stats.HoistTime = time.Since(hoistStart)
	if err != nil {
		observability.Pipeline().OnHoistComplete(ctx, 0, result.Stats.HoistTime, err)
		return nil, err
	}
	result.Stats.PlacedNodes = placement.Count()
	observability.Pipeline().OnHoistComplete(ctx, result.Stats.PlacedNodes, result.Stats.HoistTime, nil)

	logger.Info("hoisted tree",
		"placed", result.Stats.PlacedNodes,
		"duration", result.Stats.HoistTime)

	// Stage 4: Assemble
	assembleStart := time.Now()
	observability.Pipeline().OnAssembleStart(ctx)
	lf, err := Assemble(placement, store, opts.Current.Name, opts.Current.Version)
	result.Stats.AssembleTime = time.Since(assembleStart)
	observability.Pipeline().OnAssembleComplete(ctx, result.Stats.AssembleTime, err)
	if err != nil {
		return nil, err
	}
	result.Lockfile = lf

	output, err := lockfile.Marshal(lf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode lock file")
	}
	result.Output = output

	logger.Info("assembled lock file",
		"packages", result.Stats.PlacedNodes,
		"bytes", len(output),
		"duration", result.Stats.AssembleTime)

	// Cache the finished run
	if data, err := json.Marshal(cachedResult{Lockfile: lf, Decisions: result.Decisions}); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLResult)
		observability.Cache().OnCacheSet(ctx, "result", len(data))
	}

	return result, nil
}

// Bootstrap assembles a lock file from a single snapshot without a previous
// lock to diff against: build, hoist, assemble. This is how a project gets
// its first deterministic lock file.
func (r *Runner) Bootstrap(ctx context.Context, snap *lockfile.Snapshot, logger *log.Logger) (*Result, error) {
	if snap == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no snapshot")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = r.Logger
	}

	result := &Result{}
	store := locktree.NewVersionStore()

	buildStart := time.Now()
	root, err := r.build(ctx, "current", snap, store, result, logger)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.CurrentNodes = root.Count()

	hoistStart := time.Now()
	observability.Pipeline().OnHoistStart(ctx, root.Count())
	placement, err := hoist.Hoist(root)
	result.Stats.HoistTime = time.Since(hoistStart)
	if err != nil {
		observability.Pipeline().OnHoistComplete(ctx, 0, result.Stats.HoistTime, err)
		return nil, err
	}
	result.Stats.PlacedNodes = placement.Count()
	observability.Pipeline().OnHoistComplete(ctx, result.Stats.PlacedNodes, result.Stats.HoistTime, nil)

	assembleStart := time.Now()
	observability.Pipeline().OnAssembleStart(ctx)
	lf, err := Assemble(placement, store, snap.Name, snap.Version)
	result.Stats.AssembleTime = time.Since(assembleStart)
	observability.Pipeline().OnAssembleComplete(ctx, result.Stats.AssembleTime, err)
	if err != nil {
		return nil, err
	}
	result.Lockfile = lf

	output, err := lockfile.Marshal(lf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode lock file")
	}
	result.Output = output

	logger.Info("bootstrapped lock file",
		"packages", result.Stats.PlacedNodes,
		"cycles", result.Stats.Cycles,
		"bytes", len(output))

	return result, nil
}

// build constructs one canonical tree, recording truncated cycles in the
// result stats.
func (r *Runner) build(ctx context.Context, side string, snap *lockfile.Snapshot, store *locktree.VersionStore, result *Result, logger *log.Logger) (*locktree.Node, error) {
	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, side)

	onCycle := func(path, requiredFrom string) {
		result.Stats.Cycles++
		observability.Pipeline().OnCycle(ctx, side, path, requiredFrom)
		logger.Warn("truncated circular requirement",
			"side", side,
			"path", path,
			"required_from", requiredFrom)
	}

	root, err := locktree.NewBuilder(snap, store, onCycle).Build()
	nodes := 0
	if root != nil {
		nodes = root.Count()
	}
	observability.Pipeline().OnBuildComplete(ctx, side, nodes, time.Since(start), err)
	return root, err
}

// resultKey derives the cache key from content hashes of both snapshots and
// the project-module patterns.
func (r *Runner) resultKey(opts Options) (string, error) {
	prevData, err := lockfile.MarshalSnapshot(opts.Previous)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode previous snapshot")
	}
	currData, err := lockfile.MarshalSnapshot(opts.Current)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode current snapshot")
	}
	return r.Keyer.ResultKey(cache.Hash(prevData), cache.Hash(currData), cache.ResultKeyOpts{
		ProjectModules: opts.ProjectModules,
	}), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// logger picks the per-run logger.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
