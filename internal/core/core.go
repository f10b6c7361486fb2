package core

import "time"

// Post status values as stored in the database.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// TopicCategory is one of the fixed editorial categories blog posts are
// generated from.
type TopicCategory struct {
	ID               string
	Name             string
	Description      string
	ExampleSubtopics []string
	AssociatedTags   []string
}

// ModelInfo identifies the provider and model that produced a post.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// BlogPost is a generated blog post as persisted in the store.
// Content holds the article body in Markdown.
type BlogPost struct {
	ID                      string
	Title                   string
	Slug                    string
	Excerpt                 string
	MetaDescription         string
	Content                 string
	Bibliography            string
	InstagramCaption        string
	InstagramCarouselSlides []string
	FeaturedImageSuggestion string
	Tags                    []string
	TopicCategory           string
	Author                  string
	Status                  string
	PublishToken            string
	TokenExpiresAt          time.Time
	PublishedDate           time.Time
	ModelProvider           string
	ModelID                 string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Published reports whether the post has been published.
func (p BlogPost) Published() bool {
	return p.Status == StatusPublished
}

// TokenExpired reports whether the publish token has expired at the given
// time. A zero expiry never expires.
func (p BlogPost) TokenExpired(now time.Time) bool {
	return !p.TokenExpiresAt.IsZero() && now.After(p.TokenExpiresAt)
}

// Draft is the outcome of persisting a freshly generated post.
type Draft struct {
	ID             string
	Slug           string
	PublishToken   string
	TokenExpiresAt time.Time
}
