package admin

import (
	"log"
	"time"

	"github.com/go-chi/chi/v5"
	adminapp "github.com/sngm3741/feedback-dashboard/internal/admin/application"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/views"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger    *log.Logger
	dashboard adminapp.DashboardService
	views     *views.Renderer
	location  *time.Location
}

// Config provides dependencies for Handler.
type Config struct {
	Logger    *log.Logger
	Dashboard adminapp.DashboardService
	Views     *views.Renderer
	Location  *time.Location
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &Handler{
		logger:    cfg.Logger,
		dashboard: cfg.Dashboard,
		views:     cfg.Views,
		location:  location,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.dashboardHandler())
	r.Get("/api/reviews", h.dashboardJSONHandler())
}
