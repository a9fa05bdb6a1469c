package public

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/feedback-dashboard/internal/infrastructure/genai"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/common"
	"github.com/sngm3741/feedback-dashboard/internal/interfaces/http/views"
	publicapp "github.com/sngm3741/feedback-dashboard/internal/public/application"
	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
)

const defaultFormRating = 5

// reviewFormPage is the view model of the user dashboard.
type reviewFormPage struct {
	Rating    int
	Text      string
	FormError string
	SaveError string
	AIWarning string
	Submitted bool
	Reply     string
	ModelUsed string
}

type createReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type reviewResponse struct {
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	Summary   string    `json:"summary"`
	Action    string    `json:"action"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

type createReviewResponse struct {
	Status    string         `json:"status"`
	Review    reviewResponse `json:"review"`
	ModelUsed string         `json:"modelUsed,omitempty"`
	AIWarning string         `json:"aiWarning,omitempty"`
}

// reviewFormHandler は投稿フォームを表示する。直前の投稿結果があれば flash Cookie から復元する。
func (h *Handler) reviewFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := reviewFormPage{Rating: defaultFormRating}
		if msg, ok := h.flash.pop(w, r); ok {
			page.Submitted = true
			page.Reply = msg.Reply
			page.ModelUsed = msg.ModelUsed
			page.AIWarning = msg.AIWarning
		}
		h.views.Render(w, http.StatusOK, views.PageUser, page)
	}
}

// reviewSubmitHandler はフォーム投稿を処理し、成功時は PRG でフォームへリダイレクトする。
func (h *Handler) reviewSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, common.MaxReviewRequestBody)
		if err := r.ParseForm(); err != nil {
			h.views.Render(w, http.StatusBadRequest, views.PageUser, reviewFormPage{
				Rating:    defaultFormRating,
				FormError: "Could not read the form: " + err.Error(),
			})
			return
		}

		text := r.PostFormValue("review")
		rating, err := common.ParseRating(r.PostFormValue("rating"))
		if err != nil {
			h.views.Render(w, http.StatusBadRequest, views.PageUser, reviewFormPage{
				Rating:    defaultFormRating,
				Text:      text,
				FormError: err.Error(),
			})
			return
		}
		if strings.TrimSpace(text) == "" {
			h.views.Render(w, http.StatusBadRequest, views.PageUser, reviewFormPage{
				Rating:    rating,
				FormError: "Please write your review before submitting.",
			})
			return
		}

		result, err := h.reviewCommands.Submit(r.Context(), publicapp.SubmitReviewCommand{Rating: rating, Text: text})
		if err != nil {
			page := reviewFormPage{Rating: rating, Text: text}
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrEmptyReview):
				status = http.StatusBadRequest
				page.FormError = err.Error()
			default:
				h.logger.Printf("レビューの保存に失敗: %v", err)
				page.SaveError = err.Error()
			}
			if result != nil {
				page.AIWarning = aiWarningText(result.AIWarning)
			}
			h.views.Render(w, status, views.PageUser, page)
			return
		}

		msg := flashMessage{
			Reply:     result.Review.Reply,
			ModelUsed: result.Review.ModelUsed,
			AIWarning: aiWarningText(result.AIWarning),
		}
		if err := h.flash.set(w, msg); err != nil {
			// Cookie に載らない場合はリダイレクトせずに結果をそのまま描画する
			h.logger.Printf("flash Cookie を設定できないため直接描画します: %v", err)
			h.views.Render(w, http.StatusOK, views.PageUser, reviewFormPage{
				Rating:    defaultFormRating,
				Submitted: true,
				Reply:     msg.Reply,
				ModelUsed: msg.ModelUsed,
				AIWarning: msg.AIWarning,
			})
			return
		}
		http.Redirect(w, r, "/?submitted=1", http.StatusSeeOther)
	}
}

// reviewCreateHandler is the JSON variant of the review form.
func (h *Handler) reviewCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReviewRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxReviewRequestBody))
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := h.reviewCommands.Submit(r.Context(), publicapp.SubmitReviewCommand{Rating: req.Rating, Text: req.Review})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRating) || errors.Is(err, domain.ErrEmptyReview) {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
				return
			}
			h.logger.Printf("レビューの保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Error saving data: "+err.Error())
			return
		}

		review := result.Review
		common.WriteJSON(h.logger, w, http.StatusCreated, createReviewResponse{
			Status: "ok",
			Review: reviewResponse{
				Rating:    review.Rating,
				Review:    review.Text,
				Summary:   review.Summary,
				Action:    review.Action,
				Reply:     review.Reply,
				Timestamp: review.Timestamp.In(h.location),
			},
			ModelUsed: review.ModelUsed,
			AIWarning: aiWarningText(result.AIWarning),
		})
	}
}

// aiWarningText は全モデル失敗時の最後のエラーを表示用文字列にする。
func aiWarningText(err error) string {
	if err == nil {
		return ""
	}
	var exhausted *genai.ExhaustedError
	if errors.As(err, &exhausted) && exhausted.Last != nil {
		return exhausted.Last.Error()
	}
	return err.Error()
}
