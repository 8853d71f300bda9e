package model

// Comment is a single reader comment embedded in an Article.
type Comment struct {
	Username string `json:"username" bson:"username"`
	Text     string `json:"text" bson:"text"`
}

// Article is a blog post's mutable state, keyed by its unique name.
type Article struct {
	Name     string    `json:"name" bson:"name"`
	Upvotes  int       `json:"upvotes" bson:"upvotes"`
	Comments []Comment `json:"comments" bson:"comments"`
}

// NewArticle returns an article with no votes and an empty comment list.
func NewArticle(name string) Article {
	return Article{
		Name:     name,
		Comments: []Comment{},
	}
}

// Normalize makes sure Comments encodes as [] rather than null.
func (a *Article) Normalize() {
	if a.Comments == nil {
		a.Comments = []Comment{}
	}
}

// WithComment returns a copy of a with c appended to its comments.
func (a Article) WithComment(c Comment) Article {
	comments := make([]Comment, 0, len(a.Comments)+1)
	comments = append(comments, a.Comments...)
	a.Comments = append(comments, c)
	return a
}
