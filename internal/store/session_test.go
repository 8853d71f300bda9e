package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"my-blog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSession runs the behaviour every backend must share against
// sessions opened from d.
func exerciseSession(t *testing.T, d Dialer) {
	ctx := context.Background()

	open := func(t *testing.T) Session {
		sess, err := d.Dial(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { sess.Close(ctx) })
		return sess
	}

	seed := func(t *testing.T, sess Session, a model.Article) {
		require.NoError(t, sess.Put(ctx, &a))
	}

	t.Run("FindByName", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.Article{
			Name:     "learn-react",
			Upvotes:  3,
			Comments: []model.Comment{{Username: "me", Text: "hi"}},
		})

		got, err := sess.FindByName(ctx, "learn-react")
		require.NoError(t, err)
		assert.Equal(t, "learn-react", got.Name)
		assert.Equal(t, 3, got.Upvotes)
		assert.Equal(t, []model.Comment{{Username: "me", Text: "hi"}}, got.Comments)
	})

	t.Run("FindByName_Missing", func(t *testing.T) {
		sess := open(t)
		_, err := sess.FindByName(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindByName_NoComments", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.Article{Name: "empty"})

		got, err := sess.FindByName(ctx, "empty")
		require.NoError(t, err)
		assert.NotNil(t, got.Comments, "comments should encode as an empty list")
		assert.Empty(t, got.Comments)
	})

	t.Run("AppendComment_KeepsOrder", func(t *testing.T) {
		sess := open(t)
		c1 := model.Comment{Username: "ann", Text: "first"}
		c2 := model.Comment{Username: "bob", Text: "second"}
		seed(t, sess, model.Article{Name: "ordered", Comments: []model.Comment{c1, c2}})

		got, err := sess.AppendComment(ctx, "ordered", model.Comment{Username: "a", Text: "b"})
		require.NoError(t, err)
		assert.Equal(t, []model.Comment{c1, c2, {Username: "a", Text: "b"}}, got.Comments)

		// Identical comments are appended independently
		got, err = sess.AppendComment(ctx, "ordered", model.Comment{Username: "a", Text: "b"})
		require.NoError(t, err)
		assert.Len(t, got.Comments, 4)
	})

	t.Run("AppendComment_Missing", func(t *testing.T) {
		sess := open(t)
		_, err := sess.AppendComment(ctx, "ghost", model.Comment{Username: "a", Text: "b"})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = sess.FindByName(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound, "a missing article must not be created")
	})

	t.Run("Upvote_Sequential", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.Article{Name: "votes", Upvotes: 5})

		got, err := sess.Upvote(ctx, "votes")
		require.NoError(t, err)
		assert.Equal(t, 6, got.Upvotes)

		got, err = sess.Upvote(ctx, "votes")
		require.NoError(t, err)
		assert.Equal(t, 7, got.Upvotes)
	})

	t.Run("Upvote_Missing", func(t *testing.T) {
		sess := open(t)
		_, err := sess.Upvote(ctx, "ghost-votes")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Upvote_ConcurrentNoLostUpdates", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.Article{Name: "race", Upvotes: 10})

		const n = 200
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Each request gets its own session, as in the server.
				s, err := d.Dial(ctx)
				if err != nil {
					errs <- err
					return
				}
				defer s.Close(ctx)
				_, err = s.Upvote(ctx, "race")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := sess.FindByName(ctx, "race")
		require.NoError(t, err)
		assert.Equal(t, 10+n, got.Upvotes)
	})

	t.Run("AppendComment_ConcurrentNoLostComments", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.NewArticle("busy"))

		const n = 200
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s, err := d.Dial(ctx)
				if !assert.NoError(t, err) {
					return
				}
				defer s.Close(ctx)
				_, err = s.AppendComment(ctx, "busy", model.Comment{Username: "u", Text: fmt.Sprintf("t%d", i)})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := sess.FindByName(ctx, "busy")
		require.NoError(t, err)
		require.Len(t, got.Comments, n)

		seen := make(map[string]bool, n)
		for _, c := range got.Comments {
			seen[c.Text] = true
		}
		assert.Len(t, seen, n, "every comment should be stored exactly once")
	})

	t.Run("Put_Replaces", func(t *testing.T) {
		sess := open(t)
		seed(t, sess, model.Article{Name: "replace", Upvotes: 1})
		seed(t, sess, model.Article{Name: "replace", Upvotes: 9})

		got, err := sess.FindByName(ctx, "replace")
		require.NoError(t, err)
		assert.Equal(t, 9, got.Upvotes)
	})
}
