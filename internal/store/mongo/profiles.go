// Package mongo implementa ProfileRepository sobre la colección de clientes.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

const DefaultCollection = "customers"

type Config struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type ProfileRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open conecta y verifica con Ping.
func Open(ctx context.Context, cfg Config) (*ProfileRepo, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo: %w", repository.ErrNoDatabase)
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &ProfileRepo{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

func (r *ProfileRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ProfileRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func byKey(subjectID string) bson.D {
	return bson.D{{Key: repository.ProfileKeyField, Value: subjectID}}
}

func (r *ProfileRepo) FindAll(ctx context.Context) ([]repository.Document, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	out := make([]repository.Document, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDocument(m))
	}
	return out, nil
}

func (r *ProfileRepo) FindByKey(ctx context.Context, subjectID string) (repository.Document, error) {
	var m bson.M
	err := r.coll.FindOne(ctx, byKey(subjectID)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return toDocument(m), nil
}

// toDocument quita los tipos del driver: bson.A pasa a []any, los documentos
// anidados a map[string]any y los ObjectID a su forma hex.
func toDocument(m bson.M) repository.Document {
	return repository.Document(plain(m).(map[string]any))
}

func plain(v any) any {
	switch x := v.(type) {
	case bson.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case bson.ObjectID:
		return x.Hex()
	default:
		return v
	}
}

func (r *ProfileRepo) DeleteByKey(ctx context.Context, subjectID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, byKey(subjectID))
	if err != nil {
		return 0, fmt.Errorf("mongo delete: %w", err)
	}
	return res.DeletedCount, nil
}
