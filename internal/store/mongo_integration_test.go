// mongo_integration_test.go
//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"my-blog/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Needs a live server: BLOG_TEST_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./...
func TestMongoSession(t *testing.T) {
	uri := os.Getenv("BLOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BLOG_TEST_MONGO_URI not set")
	}

	// Throwaway database per run
	database := "blog-test-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		client, err := mongo.Connect(options.Client().ApplyURI(uri))
		if err != nil {
			return
		}
		ctx := context.Background()
		client.Database(database).Drop(ctx)
		client.Disconnect(ctx)
	})

	exerciseSession(t, &MongoDialer{URI: uri, Database: database, ConnectTimeout: 5 * time.Second})
}

func TestMongoSession_AppendToNullComments(t *testing.T) {
	uri := os.Getenv("BLOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BLOG_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	database := "blog-test-" + uuid.NewString()[:8]
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Database(database).Drop(ctx)
		client.Disconnect(ctx)
	})

	// Documents written by hand, outside Put
	coll := client.Database(database).Collection(ArticlesCollection)
	_, err = coll.InsertMany(ctx, []any{
		bson.D{{Key: "name", Value: "null-comments"}, {Key: "upvotes", Value: 0}, {Key: "comments", Value: nil}},
		bson.D{{Key: "name", Value: "no-comments"}, {Key: "upvotes", Value: 0}},
	})
	require.NoError(t, err)

	sess, err := (&MongoDialer{URI: uri, Database: database, ConnectTimeout: 5 * time.Second}).Dial(ctx)
	require.NoError(t, err)
	defer sess.Close(ctx)

	for _, name := range []string{"null-comments", "no-comments"} {
		got, err := sess.AppendComment(ctx, name, model.Comment{Username: "a", Text: "b"})
		require.NoError(t, err, name)
		assert.Equal(t, []model.Comment{{Username: "a", Text: "b"}}, got.Comments, name)

		got, err = sess.AppendComment(ctx, name, model.Comment{Username: "c", Text: "d"})
		require.NoError(t, err, name)
		assert.Len(t, got.Comments, 2, name)
	}
}

func TestMongoDialer_Unreachable(t *testing.T) {
	d := &MongoDialer{
		URI:            "mongodb://127.0.0.1:1",
		Database:       "my-blog",
		ConnectTimeout: 200 * time.Millisecond,
	}

	_, err := d.Dial(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "mongo", connErr.Driver)
}
