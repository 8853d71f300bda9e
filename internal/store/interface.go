package store

import (
	"context"
	"errors"
	"fmt"

	"my-blog/internal/model"
)

var (
	ErrNotFound = errors.New("article not found")
	ErrConflict = errors.New("article update conflict")
)

// ConnectionError reports a failure to reach the backing store.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Session is a live handle on the articles collection. It is used by a
// single request and closed when that request is done.
type Session interface {
	// FindByName returns ErrNotFound when no article has the given name.
	FindByName(ctx context.Context, name string) (*model.Article, error)
	AppendComment(ctx context.Context, name string, c model.Comment) (*model.Article, error)
	Upvote(ctx context.Context, name string) (*model.Article, error)
	// Put replaces or creates the article with article.Name.
	Put(ctx context.Context, article *model.Article) error
	Close(ctx context.Context) error
}

// Dialer opens sessions against a configured store.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}
