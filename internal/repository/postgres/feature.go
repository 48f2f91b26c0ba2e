package postgres

import (
	"context"
	"fmt"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/database"
)

// FeatureRepository implements repository.FeatureRepository using PostgreSQL.
type FeatureRepository struct {
	db database.DBTX
}

// NewFeatureRepository creates a new PostgreSQL-backed feature repository.
func NewFeatureRepository(db database.DBTX) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// ListBySKU returns the item's features in display order.
func (r *FeatureRepository) ListBySKU(ctx context.Context, sku string) (features []domain.Feature, err error) {
	query := `
		SELECT feature_name, feature_value, COALESCE(uom, '')
		FROM item_features
		WHERE item_code = $1
		ORDER BY position, feature_name`

	ctx, end := database.TraceQuery(ctx, "FeatureListBySKU", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("list item features: %w", err)
	}
	defer rows.Close()

	features = []domain.Feature{}
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.Name, &f.Value, &f.UOM); err != nil {
			return nil, fmt.Errorf("scan item feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item feature rows: %w", err)
	}

	return features, nil
}

// UnitsByFamilyCodes returns feature name to unit of measure for the given
// families. The first family listed wins when several define a feature.
func (r *FeatureRepository) UnitsByFamilyCodes(ctx context.Context, familyCodes []string) (units map[string]string, err error) {
	units = make(map[string]string)
	if len(familyCodes) == 0 {
		return units, nil
	}

	query := `
		SELECT family_code, feature_name, uom
		FROM family_feature_units
		WHERE family_code = ANY($1)`

	ctx, end := database.TraceQuery(ctx, "FeatureUnitsByFamilyCodes", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, familyCodes)
	if err != nil {
		return nil, fmt.Errorf("list family feature units: %w", err)
	}
	defer rows.Close()

	rank := make(map[string]int, len(familyCodes))
	for i, c := range familyCodes {
		if _, seen := rank[c]; !seen {
			rank[c] = i
		}
	}
	best := make(map[string]int)

	for rows.Next() {
		var family, name, uom string
		if err := rows.Scan(&family, &name, &uom); err != nil {
			return nil, fmt.Errorf("scan family feature unit: %w", err)
		}
		if prev, ok := best[name]; ok && prev <= rank[family] {
			continue
		}
		best[name] = rank[family]
		units[name] = uom
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family feature unit rows: %w", err)
	}

	return units, nil
}
