package snapshot

import (
	"context"
	stderrors "errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
)

// MongoStore keeps snapshots in a MongoDB collection, one document per
// project, for multi-instance service deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// snapshotDoc is the stored document shape.
type snapshotDoc struct {
	Project  string             `bson:"_id"`
	Snapshot *lockfile.Snapshot `bson:"snapshot"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
// Collection defaults to "snapshots".
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "snapshots"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(coll),
	}, nil
}

// Get retrieves the stored snapshot for a project.
func (s *MongoStore) Get(ctx context.Context, project string) (*lockfile.Snapshot, error) {
	var doc snapshotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": project}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot for %q", project)
	}
	if err != nil {
		return nil, err
	}
	if doc.Snapshot == nil {
		return nil, errors.New(errors.ErrCodeInvalidLockfile, "stored snapshot for %q is empty", project)
	}
	if err := doc.Snapshot.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "stored snapshot for %q", project)
	}
	return doc.Snapshot, nil
}

// Set stores the snapshot for a project, replacing any existing one.
func (s *MongoStore) Set(ctx context.Context, project string, snap *lockfile.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": project},
		snapshotDoc{Project: project, Snapshot: snap},
		options.Replace().SetUpsert(true))
	return err
}

// Delete removes the stored snapshot for a project.
func (s *MongoStore) Delete(ctx context.Context, project string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": project})
	return err
}

// List returns the project names with a stored snapshot, sorted.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []string
	for cursor.Next(ctx) {
		var doc struct {
			Project string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		projects = append(projects, doc.Project)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	slices.Sort(projects)
	return projects, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
