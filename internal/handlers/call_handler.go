package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/utils"
)

type CallLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.CallRecord, error)
}

// CallHandler exposes the call audit trail of the requesting user
type CallHandler struct {
	store  CallLister
	logger *zap.Logger
}

func NewCallHandler(store CallLister, logger *zap.Logger) *CallHandler {
	return &CallHandler{store: store, logger: logger}
}

// List handles GET /api/calls
func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "call store unavailable"})
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

	records, err := h.store.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list call records", zap.String("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list calls"})
		return
	}
	if records == nil {
		records = []models.CallRecord{}
	}

	utils.JSON(w, http.StatusOK, models.CallRecordsResponse{Total: len(records), Items: records})
}
