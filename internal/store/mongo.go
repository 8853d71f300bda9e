package store

import (
	"context"
	"errors"
	"time"

	"my-blog/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ArticlesCollection holds one document per article.
const ArticlesCollection = "articles"

// MongoDialer connects a new client for every session and selects
// Database on it.
type MongoDialer struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func (d *MongoDialer) Dial(ctx context.Context) (Session, error) {
	opts := options.Client().ApplyURI(d.URI)
	if d.ConnectTimeout > 0 {
		opts.SetConnectTimeout(d.ConnectTimeout).SetServerSelectionTimeout(d.ConnectTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, &ConnectionError{Driver: "mongo", Err: err}
	}
	// Connect is lazy; Ping surfaces an unreachable server here instead
	// of on the first query.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &ConnectionError{Driver: "mongo", Err: err}
	}

	return &MongoSession{
		client: client,
		coll:   client.Database(d.Database).Collection(ArticlesCollection),
	}, nil
}

// MongoSession runs article operations against one client.
type MongoSession struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (s *MongoSession) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func byName(name string) bson.D {
	return bson.D{{Key: "name", Value: name}}
}

func (s *MongoSession) FindByName(ctx context.Context, name string) (*model.Article, error) {
	var article model.Article
	err := s.coll.FindOne(ctx, byName(name)).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	article.Normalize()
	return &article, nil
}

func (s *MongoSession) Put(ctx context.Context, article *model.Article) error {
	a := *article
	a.Normalize()
	_, err := s.coll.ReplaceOne(ctx, byName(a.Name), a, options.Replace().SetUpsert(true))
	return err
}

// AppendComment appends in a single update pipeline so concurrent appends
// never drop a comment. A null or missing comments field starts a new list,
// which $push would reject.
func (s *MongoSession) AppendComment(ctx context.Context, name string, c model.Comment) (*model.Article, error) {
	comments := bson.D{{Key: "$concatArrays", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$comments", bson.A{}}}},
		bson.D{{Key: "$literal", Value: bson.A{c}}},
	}}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "comments", Value: comments}}}}}
	return s.findAndUpdate(ctx, name, update)
}

// Upvote uses $inc so concurrent upvotes never drop an increment.
func (s *MongoSession) Upvote(ctx context.Context, name string) (*model.Article, error) {
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "upvotes", Value: 1}}}}
	return s.findAndUpdate(ctx, name, update)
}

// update is an update document or a mongo.Pipeline.
func (s *MongoSession) findAndUpdate(ctx context.Context, name string, update any) (*model.Article, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var article model.Article
	err := s.coll.FindOneAndUpdate(ctx, byName(name), update, opts).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	article.Normalize()
	return &article, nil
}
