package server

import (
	"context"
	"errors"
	"net/http"

	"gem_market/internal/domain"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/httpx/reply"
)

// replyError отвечает на доменные ошибки по их классу, остальные уходят в reply.Error.
func replyError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		reply.Error(ctx, w, err)
		return
	}

	reply.Coded(ctx, w, statusOf(appErr), appErr.Code, appErr.Message)
}

func statusOf(err *domain.AppError) int {
	switch domain.Kind(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindInvalidProposal:
		if err.Code == errcodes.ValidationError {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case domain.KindDependencyFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func forbidden() error {
	return domain.NewError(errcodes.Forbidden, "pairing maintenance is restricted to the intermediary")
}
