package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateArticle inserts an article. Returns ErrDuplicateSlug if the slug is taken.
func (db *DB) CreateArticle(ctx context.Context, in *ArticleInput) (*Article, error) {
	var a Article
	err := db.pool.QueryRow(ctx,
		`INSERT INTO articles (title, slug, category, excerpt, content, image_url, published)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
		 RETURNING id, title, slug, category, excerpt, content, image_url, published, created_at`,
		in.Title, in.Slug, in.Category, in.Excerpt, in.Content, in.ImageURL, in.Published,
	).Scan(&a.ID, &a.Title, &a.Slug, &a.Category, &a.Excerpt, &a.Content, &a.ImageURL, &a.Published, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return &a, nil
}

// ListPublishedArticles returns published articles, newest first.
// An empty category lists every category.
func (db *DB) ListPublishedArticles(ctx context.Context, category string) ([]ArticleSummary, error) {
	query := `SELECT id, title, slug, category, excerpt, image_url, created_at
		FROM articles WHERE published = TRUE`
	args := []any{}
	if category != "" {
		query += " AND category = $1"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []ArticleSummary{}
	for rows.Next() {
		var a ArticleSummary
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Category, &a.Excerpt, &a.ImageURL, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// GetPublishedArticle returns a published article by slug. Returns nil if not found.
func (db *DB) GetPublishedArticle(ctx context.Context, slug string) (*Article, error) {
	var a Article
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, slug, category, excerpt, content, image_url, published, created_at
		 FROM articles WHERE slug = $1 AND published = TRUE`,
		slug,
	).Scan(&a.ID, &a.Title, &a.Slug, &a.Category, &a.Excerpt, &a.Content, &a.ImageURL, &a.Published, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &a, nil
}
