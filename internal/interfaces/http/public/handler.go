package public

import (
	"log"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/views"
	publicapp "github.com/sngm3741/feedback-dashboard/internal/public/application"
)

// Handler wires the user dashboard endpoints to application services.
type Handler struct {
	logger         *log.Logger
	reviewCommands publicapp.ReviewCommandService
	views          *views.Renderer
	flash          *flashCodec
	location       *time.Location
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	ReviewCommands publicapp.ReviewCommandService
	Views          *views.Renderer
	FlashSecret    []byte
	CookieSecure   bool
	Location       *time.Location
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &Handler{
		logger:         cfg.Logger,
		reviewCommands: cfg.ReviewCommands,
		views:          cfg.Views,
		flash:          newFlashCodec(cfg.FlashSecret, cfg.CookieSecure),
		location:       location,
	}
}

// Register mounts public routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.reviewFormHandler())
	r.Post("/reviews", h.reviewSubmitHandler())
	r.Post("/api/reviews", h.reviewCreateHandler())
}
