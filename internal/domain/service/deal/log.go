package deal

import (
	"context"
	"log/slog"

	"gem_market/internal/domain/entity"
	"gem_market/pkg/contextx"
	"gem_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func withDealLogger(ctx context.Context, deal *entity.Deal) context.Context {
	return contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldDealID, deal.ID.String()),
		slog.String(logx.FieldDealNumber, deal.Number),
		slog.String(logx.FieldDealType, deal.Type.String()),
	))
}
