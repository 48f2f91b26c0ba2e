package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/database"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
)

// WebsiteItemRepository implements repository.WebsiteItemRepository using PostgreSQL.
type WebsiteItemRepository struct {
	db database.DBTX
}

// NewWebsiteItemRepository creates a new PostgreSQL-backed website item repository.
func NewWebsiteItemRepository(db database.DBTX) *WebsiteItemRepository {
	return &WebsiteItemRepository{db: db}
}

// GetByItemCode returns the published copy of an item.
func (r *WebsiteItemRepository) GetByItemCode(ctx context.Context, itemCode string) (item *domain.WebsiteItem, err error) {
	query := `
		SELECT name, item_code, COALESCE(web_long_description, ''), COALESCE(short_description, '')
		FROM website_items
		WHERE item_code = $1`

	ctx, end := database.TraceQuery(ctx, "WebsiteItemGetByItemCode", query)
	defer func() { end(err) }()

	var wi domain.WebsiteItem
	err = r.db.QueryRow(ctx, query, itemCode).Scan(&wi.Name, &wi.ItemCode, &wi.LongDescription, &wi.ShortDescription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("website item", itemCode)
		}
		return nil, fmt.Errorf("get website item: %w", err)
	}
	return &wi, nil
}
