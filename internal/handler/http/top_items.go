package http

import (
	"log/slog"
	"net/http"

	"github.com/loziogigio/omnicommerce/internal/service"
	"github.com/loziogigio/omnicommerce/pkg/httputil"
	"github.com/loziogigio/omnicommerce/pkg/validator"
)

// TopItemsHandler serves the best-selling items ranking.
type TopItemsHandler struct {
	service *service.TopItemsService
	logger  *slog.Logger
}

// NewTopItemsHandler creates a new top-selling items HTTP handler.
func NewTopItemsHandler(svc *service.TopItemsService, logger *slog.Logger) *TopItemsHandler {
	return &TopItemsHandler{
		service: svc,
		logger:  logger,
	}
}

// TopItemsRequest holds the query parameters of GET /items/top-selling.
type TopItemsRequest struct {
	DaysBack int `query:"days_back" validate:"gte=1,lte=365"`
	TopLimit int `query:"top_limit" validate:"gte=1,lte=100"`
}

// TopSelling handles GET /items/top-selling.
func (h *TopItemsHandler) TopSelling(w http.ResponseWriter, r *http.Request) {
	var (
		req TopItemsRequest
		err error
	)
	if req.DaysBack, err = httputil.QueryInt(r, "days_back", service.DefaultDaysBack); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.TopLimit, err = httputil.QueryInt(r, "top_limit", service.DefaultTopLimit); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items, err := h.service.TopItems(r.Context(), req.DaysBack, req.TopLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, items)
}
