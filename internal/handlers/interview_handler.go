package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/interview/internal/middleware"
	"prepwise/interview/internal/models"
	"prepwise/interview/internal/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type InterviewReader interface {
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Interview, error)
}

type InterviewHandler struct {
	store  InterviewReader
	logger *zap.Logger
}

func NewInterviewHandler(store InterviewReader, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{store: store, logger: logger}
}

// List handles GET /api/interviews
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "interview store unavailable"})
		return
	}

	userID := requestUserID(r)
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	items, err := h.store.ListByUser(r.Context(), userID, int64(limit))
	if err != nil {
		h.logger.Error("Failed to list interviews", zap.String("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list interviews"})
		return
	}
	if items == nil {
		items = []models.Interview{}
	}

	utils.JSON(w, http.StatusOK, models.InterviewsResponse{Total: len(items), Items: items})
}

// Get handles GET /api/interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "interview store unavailable"})
		return
	}

	interview, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrInterviewNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Error: "interview not found"})
			return
		}
		h.logger.Error("Failed to load interview", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load interview"})
		return
	}

	// other users' interviews look the same as missing ones
	if userID := requestUserID(r); userID != "" && interview.UserID != userID {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Error: "interview not found"})
		return
	}

	utils.JSON(w, http.StatusOK, interview)
}

// requestUserID prefers the authenticated user over the query parameter.
func requestUserID(r *http.Request) string {
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		return id
	}
	return r.URL.Query().Get("userId")
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
