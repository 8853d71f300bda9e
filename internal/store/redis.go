package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"my-blog/internal/model"

	"github.com/redis/go-redis/v9"
)

func articleKey(name string) string {
	return fmt.Sprintf("article:%s", name)
}

// mutateArticle reads, changes and rewrites one article document inside
// Redis, so concurrent callers are serialized by the server instead of
// racing. ARGV[1] is "upvote" or "comment"; for "comment" ARGV[2] is the
// JSON encoded comment. Returns nil when the key does not exist.
var mutateArticle = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return false
end

local doc = cjson.decode(raw)
if ARGV[1] == 'upvote' then
	doc.upvotes = (tonumber(doc.upvotes) or 0) + 1
elseif ARGV[1] == 'comment' then
	if type(doc.comments) ~= 'table' then
		doc.comments = {}
	end
	table.insert(doc.comments, cjson.decode(ARGV[2]))
else
	return redis.error_reply('unknown mutation ' .. tostring(ARGV[1]))
end

local out = cjson.encode(doc)
redis.call('SET', KEYS[1], out)
return out
`)

// RedisDialer opens a fresh Redis client for every session.
type RedisDialer struct {
	Addr string
	DB   int
}

func (d *RedisDialer) Dial(ctx context.Context) (Session, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: d.Addr,
		DB:   d.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, &ConnectionError{Driver: "redis", Err: err}
	}
	return &RedisSession{rdb: rdb}, nil
}

// RedisSession stores each article as a JSON document under article:<name>.
type RedisSession struct {
	rdb *redis.Client
}

func (s *RedisSession) Close(_ context.Context) error {
	return s.rdb.Close()
}

func (s *RedisSession) FindByName(ctx context.Context, name string) (*model.Article, error) {
	val, err := s.rdb.Get(ctx, articleKey(name)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return decodeArticle(val)
}

func (s *RedisSession) Put(ctx context.Context, article *model.Article) error {
	a := *article
	a.Normalize()
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, articleKey(a.Name), data, 0).Err()
}

func (s *RedisSession) AppendComment(ctx context.Context, name string, c model.Comment) (*model.Article, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, name, "comment", string(data))
}

func (s *RedisSession) Upvote(ctx context.Context, name string) (*model.Article, error) {
	return s.mutate(ctx, name, "upvote", "")
}

func (s *RedisSession) mutate(ctx context.Context, name string, op, arg string) (*model.Article, error) {
	val, err := mutateArticle.Run(ctx, s.rdb, []string{articleKey(name)}, op, arg).Text()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, name, err)
	}
	return decodeArticle([]byte(val))
}

// storedArticle accepts documents rewritten by Lua's cjson, which
// encodes numbers as floats and an empty list as {}.
type storedArticle struct {
	Name     string          `json:"name"`
	Upvotes  float64         `json:"upvotes"`
	Comments json.RawMessage `json:"comments"`
}

func decodeArticle(data []byte) (*model.Article, error) {
	var stored storedArticle
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}

	article := model.Article{Name: stored.Name, Upvotes: int(stored.Upvotes)}
	raw := bytes.TrimSpace(stored.Comments)
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &article.Comments); err != nil {
			return nil, fmt.Errorf("decode article comments: %w", err)
		}
	}
	article.Normalize()
	return &article, nil
}
