// Package mongo is the real-time document backend. Every collection is a
// MongoDB collection of camelCase documents and a change stream pushes
// notifications to the replica.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

// Backend is the MongoDB driver.
type Backend struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger

	users   *collection[models.User]
	letters *collection[models.Letter]
	agendas *collection[models.Agenda]
}

var _ backend.Backend = (*Backend)(nil)

// Connect dials uri, pings the server and prepares the indexes.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	db := client.Database(database)
	b := &Backend{
		client: client,
		db:     db,
		logger: logger,
		users: &collection[models.User]{
			coll:  db.Collection(string(backend.Users)),
			setID: func(u models.User, id string) models.User { u.ID = id; return u },
			idOf:  func(u models.User) string { return u.ID },
		},
		letters: &collection[models.Letter]{
			coll:  db.Collection(string(backend.Letters)),
			setID: func(l models.Letter, id string) models.Letter { l.ID = id; return l },
			idOf:  func(l models.Letter) string { return l.ID },
		},
		agendas: &collection[models.Agenda]{
			coll:  db.Collection(string(backend.Agendas)),
			setID: func(a models.Agenda, id string) models.Agenda { a.ID = id; return a },
			idOf:  func(a models.Agenda) string { return a.ID },
		},
	}

	_, err = b.users.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: create username index: %w", err)
	}

	logger.Info("Connected to MongoDB", slog.String("database", database))
	return b, nil
}

func (b *Backend) Users() backend.Store[models.User]     { return b.users }
func (b *Backend) Letters() backend.Store[models.Letter] { return b.letters }
func (b *Backend) Agendas() backend.Store[models.Agenda] { return b.agendas }
func (b *Backend) Policy() backend.Policy                { return backend.PolicyPush }

// SeedUsers returns the three default accounts with the initial password.
func (b *Backend) SeedUsers() []models.User {
	return slices.Clone(backend.DefaultUsers(backend.SeedPassword))
}

func (b *Backend) Close() error {
	return b.client.Disconnect(context.Background())
}

// Watch opens a database-wide change stream and reports the collection of
// every insert, replace, update or delete. Change streams need a replica set.
func (b *Backend) Watch(ctx context.Context, fn backend.ChangeFunc) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{
			{Key: "$in", Value: bson.A{"insert", "replace", "update", "delete"}},
		}}}}},
	}
	stream, err := b.db.Watch(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("mongo: open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	b.logger.Info("watcher: change stream opened")

	for stream.Next(ctx) {
		var ev struct {
			NS struct {
				Coll string `bson:"coll"`
			} `bson:"ns"`
		}
		if err := stream.Decode(&ev); err != nil {
			b.logger.Warn("watcher: decode change", slog.String("error", err.Error()))
			continue
		}
		switch c := backend.Collection(ev.NS.Coll); c {
		case backend.Users, backend.Letters, backend.Agendas:
			fn(c)
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mongo: change stream: %w", err)
	}
	return nil
}

type collection[T any] struct {
	coll  *mongo.Collection
	idOf  func(T) string
	setID func(T, string) T
}

func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: find %s: %w", c.coll.Name(), err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *collection[T]) Create(ctx context.Context, v T) (T, error) {
	if c.idOf(v) == "" {
		v = c.setID(v, primitive.NewObjectID().Hex())
	}
	if _, err := c.coll.InsertOne(ctx, v); err != nil {
		var zero T
		if mongo.IsDuplicateKeyError(err) {
			return zero, fmt.Errorf("mongo: insert %s: %w", c.coll.Name(), apperr.ErrAlreadyExists)
		}
		return zero, fmt.Errorf("mongo: insert %s: %w", c.coll.Name(), err)
	}
	return v, nil
}

func (c *collection[T]) Update(ctx context.Context, v T) error {
	id := c.idOf(v)
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongo: replace %s: %w", id, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("mongo: replace %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mongo: replace %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo: delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("mongo: delete %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
