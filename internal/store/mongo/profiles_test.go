package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

func TestOpenRequiresURI(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.ErrorIs(t, err, repository.ErrNoDatabase)
}

func TestToDocumentDropsDriverTypes(t *testing.T) {
	oid := bson.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "userId", Value: "sub-1"},
		{Key: "raisonSociale", Value: "Acme"},
		{Key: "shops", Value: bson.A{
			bson.D{{Key: "name", Value: "north"}, {Key: "ownerId", Value: bson.NewObjectID()}},
			bson.D{{Key: "name", Value: "south"}},
		}},
	})
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	d := toDocument(m)
	assert.Equal(t, oid.Hex(), d["_id"])
	assert.Equal(t, "sub-1", d.SubjectID())

	shops, ok := d["shops"].([]any)
	require.True(t, ok, "shops is %T", d["shops"])
	require.Len(t, shops, 2)
	first, ok := shops[0].(map[string]any)
	require.True(t, ok, "shop is %T", shops[0])
	assert.Equal(t, "north", first["name"])
	assert.IsType(t, "", first["ownerId"])
}

// Requiere un Mongo real: MONGODB_TEST_URI=mongodb://localhost:27017
func TestProfileRepoIntegration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	coll := "profiles_" + uuid.NewString()[:8]
	r, err := Open(ctx, Config{URI: uri, Database: "accountsd_test", Collection: coll})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.coll.Drop(context.Background())
		_ = r.Close(context.Background())
	})

	_, err = r.coll.InsertOne(ctx, map[string]any{"userId": "sub-1", "company": "Acme"})
	require.NoError(t, err)

	d, err := r.FindByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", d.SubjectID())

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := r.DeleteByKey(ctx, "sub-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.FindByKey(ctx, "sub-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
