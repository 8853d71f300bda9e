package seed

import (
	"context"
	"fmt"
	"io"

	"my-blog/internal/model"
	"my-blog/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	Articles []struct {
		Name     string `yaml:"name"`
		Upvotes  int    `yaml:"upvotes"`
		Comments []struct {
			Username string `yaml:"username"`
			Text     string `yaml:"text"`
		} `yaml:"comments"`
	} `yaml:"articles"`
}

// Parse reads a fixture document of the form
//
//	articles:
//	  - name: learn-react
//	    upvotes: 0
//	    comments: []
func Parse(r io.Reader) ([]model.Article, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	seen := make(map[string]bool, len(f.Articles))
	articles := make([]model.Article, 0, len(f.Articles))
	for i, a := range f.Articles {
		if a.Name == "" {
			return nil, fmt.Errorf("fixture %d: name is required", i)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("fixture %d: duplicate name %q", i, a.Name)
		}
		if a.Upvotes < 0 {
			return nil, fmt.Errorf("fixture %q: upvotes must not be negative", a.Name)
		}
		seen[a.Name] = true

		article := model.NewArticle(a.Name)
		article.Upvotes = a.Upvotes
		for _, c := range a.Comments {
			article.Comments = append(article.Comments, model.Comment{Username: c.Username, Text: c.Text})
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// Load writes every article through one session, replacing any stored
// article with the same name.
func Load(ctx context.Context, dialer store.Dialer, articles []model.Article, logger *zap.Logger) error {
	sess, err := dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(context.WithoutCancel(ctx))

	for i := range articles {
		if err := sess.Put(ctx, &articles[i]); err != nil {
			return fmt.Errorf("seed %q: %w", articles[i].Name, err)
		}
		logger.Info("Article seeded", zap.String("name", articles[i].Name))
	}
	return nil
}
