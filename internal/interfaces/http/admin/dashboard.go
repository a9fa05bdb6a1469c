package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/common"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/views"
)

type dashboardPage struct {
	Error         string
	Total         int
	AverageRating string
	NegativeCount int
	Items         []feedItem
}

type feedItem struct {
	Title   string
	Review  string
	Summary string
	Action  string
	Time    string
}

type metricsResponse struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"averageRating"`
	NegativeCount int     `json:"negativeCount"`
}

type reviewResponse struct {
	Rating    int        `json:"rating"`
	Review    string     `json:"review"`
	Summary   string     `json:"summary"`
	Action    string     `json:"action"`
	Reply     string     `json:"reply"`
	Timestamp *time.Time `json:"timestamp"`
}

type dashboardResponse struct {
	Metrics metricsResponse  `json:"metrics"`
	Items   []reviewResponse `json:"items"`
}

func (h *Handler) dashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dashboard, err := h.dashboard.Load(ctx)
		if err != nil {
			h.logger.Printf("admin dashboard load failed: %v", err)
			h.views.Render(w, http.StatusInternalServerError, views.PageAdmin, dashboardPage{Error: err.Error()})
			return
		}

		h.views.Render(w, http.StatusOK, views.PageAdmin, h.buildDashboardPage(dashboard))
	}
}

func (h *Handler) dashboardJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dashboard, err := h.dashboard.Load(ctx)
		if err != nil {
			h.logger.Printf("admin dashboard load failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error reading database: "+err.Error())
			return
		}

		items := make([]reviewResponse, 0, len(dashboard.Feed))
		for _, review := range dashboard.Feed {
			items = append(items, h.toReviewResponse(review))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, dashboardResponse{
			Metrics: metricsResponse{
				Total:         dashboard.Metrics.Total,
				AverageRating: dashboard.Metrics.AverageRating,
				NegativeCount: dashboard.Metrics.NegativeCount,
			},
			Items: items,
		})
	}
}

func (h *Handler) buildDashboardPage(dashboard *admindomain.Dashboard) dashboardPage {
	items := make([]feedItem, 0, len(dashboard.Feed))
	for _, review := range dashboard.Feed {
		items = append(items, feedItem{
			Title:   fmt.Sprintf("%d⭐: %s...", review.Rating.Int(), admindomain.Preview(review.Text, common.FeedPreviewWidth)),
			Review:  review.Text,
			Summary: review.Summary,
			Action:  review.Action,
			Time:    h.formatTime(review.Timestamp),
		})
	}
	return dashboardPage{
		Total:         dashboard.Metrics.Total,
		AverageRating: fmt.Sprintf("%.1f", dashboard.Metrics.AverageRating),
		NegativeCount: dashboard.Metrics.NegativeCount,
		Items:         items,
	}
}

func (h *Handler) toReviewResponse(review admindomain.Review) reviewResponse {
	var timestamp *time.Time
	if !review.Timestamp.IsZero() {
		t := review.Timestamp.In(h.location)
		timestamp = &t
	}
	return reviewResponse{
		Rating:    review.Rating.Int(),
		Review:    review.Text,
		Summary:   review.Summary,
		Action:    review.Action,
		Reply:     review.Reply,
		Timestamp: timestamp,
	}
}

func (h *Handler) formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(h.location).Format(common.DisplayTimeLayout)
}
