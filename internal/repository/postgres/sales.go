package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/database"
)

// Sales order item document states.
const docStatusSubmitted = 1

// SalesRepository implements repository.SalesRepository using PostgreSQL.
type SalesRepository struct {
	db database.DBTX
}

// NewSalesRepository creates a new PostgreSQL-backed sales repository.
func NewSalesRepository(db database.DBTX) *SalesRepository {
	return &SalesRepository{db: db}
}

// TopItems sums the quantity of submitted sales order items created between
// from and to, most sold first.
func (r *SalesRepository) TopItems(ctx context.Context, from, to time.Time, limit int) (items []domain.TopItem, err error) {
	query := `
		SELECT item_code, SUM(qty)::float8 AS total_qty
		FROM sales_order_items
		WHERE docstatus = $1 AND creation BETWEEN $2 AND $3
		GROUP BY item_code
		ORDER BY total_qty DESC, item_code
		LIMIT $4`

	ctx, end := database.TraceQuery(ctx, "SalesTopItems", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, docStatusSubmitted, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("list top selling items: %w", err)
	}
	defer rows.Close()

	items = []domain.TopItem{}
	for rows.Next() {
		var it domain.TopItem
		if err := rows.Scan(&it.ItemCode, &it.TotalQty); err != nil {
			return nil, fmt.Errorf("scan top selling item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top selling item rows: %w", err)
	}

	return items, nil
}
