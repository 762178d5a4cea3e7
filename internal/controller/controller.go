package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/service"
	"github.com/rs/zerolog/log"
)

// StatusFor maps an engine error kind to its HTTP status.
func StatusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidArgument:
		return http.StatusBadRequest
	case service.KindFailedPrecondition, service.KindConflict:
		return http.StatusConflict
	case service.KindDeadlineExceeded:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// RespondError renders err as a dto.ErrorResponse. Internal causes are logged
// and kept out of the body.
func RespondError(ctx *gin.Context, err error, op string) {
	var engineErr *service.EngineError
	if !errors.As(err, &engineErr) {
		log.Error().Err(err).Str("op", op).Msg("Unclassified error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal error", Kind: service.KindInternal.String()})
		return
	}

	resp := dto.ErrorResponse{Message: engineErr.Message, Kind: engineErr.Kind.String()}
	switch engineErr.Kind {
	case service.KindInternal:
		log.Error().Err(err).Str("op", op).Msg("Request failed")
	case service.KindConflict:
		if engineErr.BlockingExamTemplateID != 0 {
			id := engineErr.BlockingExamTemplateID
			resp.BlockingExamTemplateID = &id
		}
		if engineErr.BlockingAttemptID != "" {
			id := engineErr.BlockingAttemptID
			resp.BlockingAttemptID = &id
		}
	case service.KindFailedPrecondition:
		resp.FinishedAt = engineErr.FinishedAt
	}
	if engineErr.Kind != service.KindInternal {
		log.Info().Str("op", op).Str("kind", resp.Kind).Msg(engineErr.Message)
	}
	ctx.JSON(StatusFor(engineErr.Kind), resp)
}

// ParseUintParam reads a positive numeric path parameter. It writes the 400
// itself and returns false when the value is malformed.
func ParseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || val == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format", Kind: service.KindInvalidArgument.String()})
		return 0, false
	}
	return uint(val), true
}

// BindError renders a request body that failed to bind.
func BindError(ctx *gin.Context, err error, op string) {
	log.Warn().Err(err).Str("op", op).Msg("Failed to bind JSON")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Message: "Invalid request body",
		Kind:    service.KindInvalidArgument.String(),
		Details: []string{err.Error()},
	})
}
