package postgres

import (
	"context"
	"fmt"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListBySKU returns the published reviews of an item, newest first.
func (r *ReviewRepository) ListBySKU(ctx context.Context, sku string) (reviews []domain.Review, err error) {
	query := `
		SELECT id, author, rating, title, comment, created_at
		FROM item_reviews
		WHERE item_code = $1 AND published
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ReviewListBySKU", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("list item reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Author, &rv.Rating, &rv.Title, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item review rows: %w", err)
	}

	return reviews, nil
}
