package application

import (
	"context"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
)

// ReviewRepository exposes read access to the review table.
type ReviewRepository interface {
	ReadAll(ctx context.Context) ([]admindomain.Review, error)
}

// DashboardService describes admin console use-cases.
type DashboardService interface {
	Load(ctx context.Context) (*admindomain.Dashboard, error)
}
