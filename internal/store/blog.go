package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlogPost struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	CoverImageURL *string    `json:"cover_image_url"`
	AuthorName    *string    `json:"author_name"`
	IsPublished   bool       `json:"is_published"`
	PublishedAt   *time.Time `json:"published_at"`
}

type BlogPostStore struct {
	db *pgxpool.Pool
}

const blogColumns = `id, slug, title, content, cover_image_url, author_name, is_published, published_at`

func (s *BlogPostStore) GetBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = $1 AND is_published = true`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var p BlogPost
	err := s.db.QueryRow(ctx, query, slug).Scan(
		&p.ID, &p.Slug, &p.Title, &p.Content,
		&p.CoverImageURL, &p.AuthorName, &p.IsPublished, &p.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *BlogPostStore) ListPublished(ctx context.Context, limit int) ([]BlogPost, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blog_posts
		WHERE is_published = true
		ORDER BY published_at DESC
		LIMIT $1`

	return s.list(ctx, query, limit)
}

func (s *BlogPostStore) ListRelated(ctx context.Context, excludeSlug string, limit int) ([]BlogPost, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blog_posts
		WHERE is_published = true AND slug <> $2
		ORDER BY published_at DESC
		LIMIT $1`

	return s.list(ctx, query, limit, excludeSlug)
}

func (s *BlogPostStore) list(ctx context.Context, query string, args ...any) ([]BlogPost, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		var p BlogPost
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Title, &p.Content,
			&p.CoverImageURL, &p.AuthorName, &p.IsPublished, &p.PublishedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
