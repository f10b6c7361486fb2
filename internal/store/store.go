// Package store persists blog posts in a local SQLite database and owns the
// publish token lifecycle: tokens are minted on draft creation, expire after
// a TTL, and are cleared the moment they are consumed.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogsmith/internal/core"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultAuthor is stamped on drafts that do not specify an author.
const DefaultAuthor = "Dr. Joanna Latek"

// Publish failure modes callers branch on.
var (
	ErrNotFound         = errors.New("blog post not found")
	ErrInvalidToken     = errors.New("invalid publish token")
	ErrTokenExpired     = errors.New("publish token has expired")
	ErrAlreadyPublished = errors.New("blog post is already published")
)

// Store is the SQLite-backed blog post store.
type Store struct {
	db       *sql.DB
	path     string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewStore opens (creating if needed) the database under dataDir. tokenTTL
// bounds how long a publish token stays valid.
func NewStore(dataDir string, tokenTTL time.Duration) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "blogsmith.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:       db,
		path:     dbPath,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	postsTable := `
	CREATE TABLE IF NOT EXISTS blog_posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		excerpt TEXT,
		meta_description TEXT,
		content TEXT,
		bibliography TEXT,
		instagram_caption TEXT,
		instagram_slides TEXT,
		featured_image_suggestion TEXT,
		tags TEXT,
		topic_category TEXT,
		author TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		publish_token TEXT,
		token_expires_at DATETIME,
		published_date DATETIME,
		model_provider TEXT,
		model_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`

	if _, err := s.db.Exec(postsTable); err != nil {
		return fmt.Errorf("failed to create blog_posts table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// newPublishToken mints a 64-character hex token from 32 random bytes.
func newPublishToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate publish token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateDraft inserts a new draft post and mints its publish token. Every
// call inserts a fresh row; a slug collision surfaces as the database's
// unique constraint error.
func (s *Store) CreateDraft(post core.BlogPost) (core.Draft, error) {
	token, err := newPublishToken()
	if err != nil {
		return core.Draft{}, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.tokenTTL)
	id := uuid.NewString()

	if post.Author == "" {
		post.Author = DefaultAuthor
	}

	tagsJSON, _ := json.Marshal(post.Tags)
	slidesJSON, _ := json.Marshal(post.InstagramCarouselSlides)

	query := `
	INSERT INTO blog_posts
	(id, title, slug, excerpt, meta_description, content, bibliography,
	 instagram_caption, instagram_slides, featured_image_suggestion, tags,
	 topic_category, author, status, publish_token, token_expires_at,
	 published_date, model_provider, model_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		id,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.MetaDescription,
		post.Content,
		post.Bibliography,
		post.InstagramCaption,
		string(slidesJSON),
		post.FeaturedImageSuggestion,
		string(tagsJSON),
		post.TopicCategory,
		post.Author,
		core.StatusDraft,
		token,
		expiresAt,
		now,
		post.ModelProvider,
		post.ModelID,
		now,
		now,
	)
	if err != nil {
		return core.Draft{}, fmt.Errorf("failed to insert draft: %w", err)
	}

	return core.Draft{
		ID:             id,
		Slug:           post.Slug,
		PublishToken:   token,
		TokenExpiresAt: expiresAt,
	}, nil
}

// GetPost retrieves a post by ID, drafts included.
func (s *Store) GetPost(id string) (*core.BlogPost, error) {
	query := `
	SELECT id, title, slug, excerpt, meta_description, content, bibliography,
	       instagram_caption, instagram_slides, featured_image_suggestion, tags,
	       topic_category, author, status, publish_token, token_expires_at,
	       published_date, model_provider, model_id, created_at, updated_at
	FROM blog_posts
	WHERE id = ?`

	return scanPost(s.db.QueryRow(query, id))
}

// GetPostBySlug retrieves a post by its slug.
func (s *Store) GetPostBySlug(slug string) (*core.BlogPost, error) {
	query := `
	SELECT id, title, slug, excerpt, meta_description, content, bibliography,
	       instagram_caption, instagram_slides, featured_image_suggestion, tags,
	       topic_category, author, status, publish_token, token_expires_at,
	       published_date, model_provider, model_id, created_at, updated_at
	FROM blog_posts
	WHERE slug = ?`

	return scanPost(s.db.QueryRow(query, slug))
}

// ListPosts returns posts newest-first, optionally filtered by status.
func (s *Store) ListPosts(status string, limit int) ([]core.BlogPost, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
	SELECT id, title, slug, excerpt, meta_description, content, bibliography,
	       instagram_caption, instagram_slides, featured_image_suggestion, tags,
	       topic_category, author, status, publish_token, token_expires_at,
	       published_date, model_provider, model_id, created_at, updated_at
	FROM blog_posts`

	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []core.BlogPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, rows.Err()
}

// Publish consumes a publish token and flips the post to published. The
// token is single-use: the guarded UPDATE clears it, so a second attempt
// with the same token fails with ErrInvalidToken. Token state resolves to
// exactly one of: consumed (success), ErrNotFound, ErrAlreadyPublished,
// ErrInvalidToken, or ErrTokenExpired.
func (s *Store) Publish(id, token string) (*core.BlogPost, error) {
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}

	if post.Published() {
		return nil, ErrAlreadyPublished
	}
	if token == "" || post.PublishToken == "" || token != post.PublishToken {
		return nil, ErrInvalidToken
	}

	now := s.now().UTC()
	if post.TokenExpired(now) {
		return nil, ErrTokenExpired
	}

	// The WHERE clause re-checks the token so a concurrent consume of the
	// same draft loses cleanly instead of publishing twice.
	res, err := s.db.Exec(`
	UPDATE blog_posts
	SET status = ?, publish_token = NULL, token_expires_at = NULL,
	    published_date = ?, updated_at = ?
	WHERE id = ? AND publish_token = ?`,
		core.StatusPublished, now, now, id, token)
	if err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read publish result: %w", err)
	}
	if affected == 0 {
		return nil, ErrInvalidToken
	}

	return s.GetPost(id)
}

// Stats summarizes the store contents for the status endpoint.
type Stats struct {
	TotalPosts int
	Drafts     int
	Published  int
	DBSize     int64
}

// GetStats returns post counts and the database file size.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM blog_posts":                            &stats.TotalPosts,
		"SELECT COUNT(*) FROM blog_posts WHERE status = 'draft'":     &stats.Drafts,
		"SELECT COUNT(*) FROM blog_posts WHERE status = 'published'": &stats.Published,
	}

	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.DBSize = fileInfo.Size()
	}

	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*core.BlogPost, error) {
	var post core.BlogPost
	var slidesJSON, tagsJSON string
	var publishToken sql.NullString
	var tokenExpiresAt, publishedDate sql.NullTime

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.MetaDescription,
		&post.Content,
		&post.Bibliography,
		&post.InstagramCaption,
		&slidesJSON,
		&post.FeaturedImageSuggestion,
		&tagsJSON,
		&post.TopicCategory,
		&post.Author,
		&post.Status,
		&publishToken,
		&tokenExpiresAt,
		&publishedDate,
		&post.ModelProvider,
		&post.ModelID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	json.Unmarshal([]byte(slidesJSON), &post.InstagramCarouselSlides)
	json.Unmarshal([]byte(tagsJSON), &post.Tags)
	post.PublishToken = publishToken.String
	if tokenExpiresAt.Valid {
		post.TokenExpiresAt = tokenExpiresAt.Time
	}
	if publishedDate.Valid {
		post.PublishedDate = publishedDate.Time
	}

	return &post, nil
}
