package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/pkg/database"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
)

// MenuRepository implements repository.MenuRepository using PostgreSQL.
type MenuRepository struct {
	db            database.DBTX
	websiteDomain string
}

// NewMenuRepository creates a menu repository. Image paths are prefixed with
// websiteDomain.
func NewMenuRepository(db database.DBTX, websiteDomain string) *MenuRepository {
	return &MenuRepository{db: db, websiteDomain: strings.TrimRight(websiteDomain, "/")}
}

// DetailFor returns the menu entry whose label is label.
func (r *MenuRepository) DetailFor(ctx context.Context, label string) (detail *domain.MenuDetail, err error) {
	query := `
		SELECT name, label, url, title, description,
		       COALESCE(category_menu_image, ''), COALESCE(category_banner_image, '')
		FROM b2c_menus
		WHERE label = $1
		LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "MenuDetailFor", query)
	defer func() { end(err) }()

	var d domain.MenuDetail
	var menuImage, bannerImage string
	err = r.db.QueryRow(ctx, query, label).Scan(
		&d.Name, &d.Label, &d.URL, &d.Title, &d.Description, &menuImage, &bannerImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("menu", label)
		}
		return nil, fmt.Errorf("get menu by label: %w", err)
	}

	d.CategoryMenuImage = r.imageURL(menuImage)
	d.CategoryBannerImage = r.imageURL(bannerImage)
	return &d, nil
}

func (r *MenuRepository) imageURL(path string) *string {
	if path == "" {
		return nil
	}
	u := r.websiteDomain + path
	return &u
}
