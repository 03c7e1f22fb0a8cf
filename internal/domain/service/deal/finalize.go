package deal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/pkg/logx"
)

// complete завершает сделку и применяет побочные эффекты к товару.
// Повторный вызов для завершённой сделки ничего не делает.
func (s *Service) complete(ctx context.Context, by uuid.UUID, deal *entity.Deal, details string) error {
	if deal.Stage == value.StageCompleted {
		return nil
	}

	now := s.now()
	deal.Stage = value.StageCompleted
	deal.Status = value.StatusCompleted
	deal.CompletedAt = &now
	deal.Log(now, value.ActivityDealCompleted, by, details)

	if err := s.save(ctx, deal); err != nil {
		return err
	}

	s.recorder.DealTransition(deal.Type, deal.Stage)
	s.applySideEffects(ctx, by, deal, value.ExclusionReasonProductSold)
	s.notify(ctx, value.EventDealCompleted, deal, details)

	if deal.Type == value.DealTypeBuyerToIntermediary {
		s.cascadeCompletion(ctx, by, deal)
	}

	logger(ctx).Info("deal completed")

	return nil
}

// cascadeCompletion завершает поставляющие сделки и закрывает невыбранные замены.
func (s *Service) cascadeCompletion(ctx context.Context, by uuid.UUID, buyerDeal *entity.Deal) {
	active := buyerDeal.ActiveSellerDealIDs()
	unselected := lo.Without(buyerDeal.AlternativeDealIDs(), active...)

	related, err := s.deals.GetByIDs(ctx, lo.Uniq(append(active, unselected...)))
	if err != nil {
		s.recorder.SideEffectFailure("cascade")
		logger(ctx).Error("load paired deals for completion failed", logx.Error(err))
		return
	}

	for _, paired := range related {
		if paired.IsTerminal() {
			continue
		}

		if lo.Contains(active, paired.ID) {
			err = s.complete(ctx, by, paired,
				fmt.Sprintf("Completed together with buyer deal %s", buyerDeal.Number))
		} else {
			err = s.cancelState(ctx, by, paired,
				fmt.Sprintf("Alternative not used, buyer deal %s completed", buyerDeal.Number))
		}

		if err != nil {
			s.recorder.SideEffectFailure("cascade")
			logger(ctx).Error("paired deal finalization failed",
				slog.String("paired-deal", paired.Number),
				logx.Error(err),
			)
			continue
		}

		logger(ctx).Debug("paired deal finalized",
			slog.String("paired-deal", paired.Number),
			slog.String("stage", paired.Stage.String()),
		)
	}
}

// cancel отменяет сделку: товар удаляется из каталога, сертификаты
// попадают в список исключений. Сделка покупателя закрывает парные сделки.
func (s *Service) cancel(ctx context.Context, by uuid.UUID, deal *entity.Deal, details string) error {
	if deal.Stage == value.StageCancelled {
		return nil
	}

	now := s.now()
	deal.Stage = value.StageCancelled
	deal.Status = value.StatusCancelled
	deal.Log(now, value.ActivityDealCancelled, by, details)

	if err := s.save(ctx, deal); err != nil {
		return err
	}

	s.recorder.DealTransition(deal.Type, deal.Stage)
	s.applySideEffects(ctx, by, deal, value.ExclusionReasonDealCancelled)
	s.notify(ctx, value.EventDealCancelled, deal, details)

	if deal.Type == value.DealTypeBuyerToIntermediary {
		if err := s.cancelPaired(ctx, by, deal, deal.PairedDealIDs,
			fmt.Sprintf("Buyer deal %s cancelled", deal.Number)); err != nil {
			s.recorder.SideEffectFailure("cascade")
			logger(ctx).Error("paired deals cancellation failed", logx.Error(err))
		}
	}

	logger(ctx).Info("deal cancelled")

	return nil
}

// cancelPaired отменяет указанные сделки без побочных эффектов на товар.
func (s *Service) cancelPaired(
	ctx context.Context,
	by uuid.UUID,
	parent *entity.Deal,
	ids []uuid.UUID,
	reason string,
) error {
	if len(ids) == 0 {
		return nil
	}

	targets, err := s.deals.GetByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return fmt.Errorf("deals.GetByIDs: %w", err)
	}

	var errs []error
	for _, target := range targets {
		if err := s.cancelState(ctx, by, target, reason); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s for %s: %w", target.Number, parent.Number, err))
		}
	}

	return errors.Join(errs...)
}

// cancelState переводит сделку в cancelled, если она ещё открыта.
func (s *Service) cancelState(ctx context.Context, by uuid.UUID, deal *entity.Deal, reason string) error {
	if deal.IsTerminal() {
		return nil
	}

	now := s.now()
	deal.Stage = value.StageCancelled
	deal.Status = value.StatusCancelled
	deal.Request.RejectionReason = reason
	deal.Log(now, value.ActivityDealCancelled, by, reason)

	if err := s.save(ctx, deal); err != nil {
		return err
	}

	s.recorder.DealTransition(deal.Type, deal.Stage)
	s.notify(ctx, value.EventDealCancelled, deal, reason)

	return nil
}

// applySideEffects обновляет каталог и список исключений. Ошибки только
// логируются: состояние сделки уже сохранено.
func (s *Service) applySideEffects(
	ctx context.Context,
	by uuid.UUID,
	deal *entity.Deal,
	reason value.ExclusionReason,
) {
	ids := lo.Uniq(deal.UnitIDs())
	if len(ids) == 0 {
		return
	}

	// Без загруженных единиц сертификаты не попадут в исключения,
	// поэтому каталог не трогаем.
	units, err := s.units.GetByIDs(ctx, ids)
	if err != nil {
		s.recorder.SideEffectFailure("inventory")
		logger(ctx).Error("load units for side effects failed", logx.Error(err))
		return
	}

	switch reason {
	case value.ExclusionReasonProductSold:
		err = s.units.MarkSold(ctx, ids)
	case value.ExclusionReasonDealCancelled:
		err = s.units.Delete(ctx, ids)
	}
	if err != nil {
		s.recorder.SideEffectFailure("inventory")
		logger(ctx).Error("inventory update failed",
			slog.String("reason", string(reason)),
			logx.Error(err),
		)
	}

	now := s.now()
	entries := lo.FilterMap(units, func(unit *entity.Unit, _ int) (entity.ExclusionEntry, bool) {
		return entity.ExclusionEntry{
			CertificateNumber: unit.CertificateNumber,
			Reason:            reason,
			DealID:            deal.ID,
			AddedBy:           by,
			CreatedAt:         now,
		}, unit.CertificateNumber != ""
	})
	if len(entries) == 0 {
		return
	}

	added, err := s.exclusions.InsertMany(ctx, entries)
	if err != nil {
		s.recorder.SideEffectFailure("exclusion")
		logger(ctx).Error("exclusion list update failed", logx.Error(err))
		return
	}

	logger(ctx).Debug("certificates excluded",
		slog.Int("added", added),
		slog.Int("requested", len(entries)),
		slog.String("reason", string(reason)),
	)
}
