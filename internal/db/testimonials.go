package db

import (
	"context"
	"fmt"
)

// ListTestimonials returns testimonials, newest first.
func (db *DB) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, author_name, quote_en, quote_es, rating, created_at
		 FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	testimonials := []Testimonial{}
	for rows.Next() {
		var t Testimonial
		if err := rows.Scan(&t.ID, &t.AuthorName, &t.QuoteEN, &t.QuoteES, &t.Rating, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}
