package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/model"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	resp := errorResponse{Error: code, Message: err.Error()}

	var transitionErr *model.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		resp.From = string(transitionErr.From)
		resp.To = string(transitionErr.To)
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		resp.Message = "internal server error"
	}
	c.JSON(status, resp)
}

func writeBindError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: err.Error()})
}
