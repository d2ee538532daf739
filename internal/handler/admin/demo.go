package admin

import (
	"net/http"

	"github.com/manicvanity/storefront/internal/handler"
	"github.com/manicvanity/storefront/internal/middleware"
	"github.com/manicvanity/storefront/internal/service"
)

// DemoHandler exposes demo-data generation. Routes are mounted behind
// middleware.AdminSecret.
type DemoHandler struct {
	demo service.DemoService
}

func NewDemoHandler(demo service.DemoService) *DemoHandler {
	return &DemoHandler{demo: demo}
}

type generateOrdersRequest struct {
	Count *int `json:"count,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// GenerateOrders handles POST /admin/demo/orders
func (h *DemoHandler) GenerateOrders(w http.ResponseWriter, r *http.Request) {
	var req generateOrdersRequest
	if err := handler.DecodeJSON(r, &req, true); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	count := service.DefaultDemoOrders
	if req.Count != nil {
		count = *req.Count
	}

	result, err := h.demo.GenerateOrders(r.Context(), count)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	middleware.GetLogger(r.Context()).Info("demo orders generated",
		"orders", result.OrdersCreated,
		"items", result.ItemsCreated,
	)
	handler.JSON(w, http.StatusCreated, result)
}

// Reseed handles POST /admin/demo/reseed
func (h *DemoHandler) Reseed(w http.ResponseWriter, r *http.Request) {
	result, err := h.demo.Reseed(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	middleware.GetLogger(r.Context()).Info("catalog reseeded",
		"products_added", result.ProductsAdded,
		"variants_restocked", result.VariantsRestocked,
	)
	handler.JSON(w, http.StatusOK, result)
}
