package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"my-blog/internal/model"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerStore keeps articles in an embedded Badger database. The data
// directory is locked by a single process, so every session shares
// the one open handle.
type BadgerStore struct {
	db *badger.DB

	// mu serializes writers; with one process owning the directory it
	// leaves Badger no conflicting transactions to reject.
	mu sync.Mutex
}

// OpenBadger opens (or creates) the database at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &ConnectionError{Driver: "badger", Err: err}
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an already opened database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// RunGC triggers value log garbage collection every interval until ctx
// is cancelled.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

func (s *BadgerStore) Dial(_ context.Context) (Session, error) {
	if s.db == nil || s.db.IsClosed() {
		return nil, &ConnectionError{Driver: "badger", Err: errors.New("database is closed")}
	}
	return badgerSession{s}, nil
}

// badgerSession leaves the shared handle open on Close.
type badgerSession struct {
	*BadgerStore
}

func (badgerSession) Close(_ context.Context) error {
	return nil
}

func (s *BadgerStore) FindByName(_ context.Context, name string) (*model.Article, error) {
	var article *model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		article, err = getArticle(txn, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (s *BadgerStore) Put(_ context.Context, article *model.Article) error {
	a := *article
	a.Normalize()
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(articleKey(a.Name)), data)
	})
}

func (s *BadgerStore) AppendComment(ctx context.Context, name string, c model.Comment) (*model.Article, error) {
	return s.update(ctx, name, func(a *model.Article) {
		*a = a.WithComment(c)
	})
}

func (s *BadgerStore) Upvote(ctx context.Context, name string) (*model.Article, error) {
	return s.update(ctx, name, func(a *model.Article) {
		a.Upvotes++
	})
}

// update runs the read-modify-write transaction while holding mu.
func (s *BadgerStore) update(ctx context.Context, name string, mutate func(*model.Article)) (*model.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	err := s.db.Update(func(txn *badger.Txn) error {
		article, err := getArticle(txn, name)
		if err != nil {
			return err
		}
		mutate(article)

		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		return txn.Set([]byte(articleKey(name)), data)
	})
	s.mu.Unlock()

	if errors.Is(err, badger.ErrConflict) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, name)
	}
	if err != nil {
		return nil, err
	}
	return s.FindByName(ctx, name)
}

func getArticle(txn *badger.Txn, name string) (*model.Article, error) {
	item, err := txn.Get([]byte(articleKey(name)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var article *model.Article
	err = item.Value(func(val []byte) error {
		article, err = decodeArticle(val)
		return err
	})
	return article, err
}
