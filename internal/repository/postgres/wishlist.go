// Package postgres implements the collaborator repositories over PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/loziogigio/omnicommerce/pkg/database"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	db database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(db database.DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// ItemsFor returns the user's saved item codes, oldest first.
func (r *WishlistRepository) ItemsFor(ctx context.Context, userID string) (items []string, err error) {
	query := `
		SELECT item_code
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at, item_code`

	ctx, end := database.TraceQuery(ctx, "WishlistItemsFor", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	items = []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return items, nil
}
