package deal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/role"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

type SelectAlternativeRequest struct {
	// UnitID исходная единица строки.
	UnitID            uuid.UUID
	AlternativeUnitID uuid.UUID
}

// SelectAlternative заменяет единицу строки одним из подобранных кандидатов
// и отменяет ставшие ненужными сделки с продавцами. Повторный выбор того же
// кандидата не меняет сумму и только повторяет отмену.
func (s *Service) SelectAlternative(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	req SelectAlternativeRequest,
) (entity.DealView, error) {
	if !identity.Privileged {
		return entity.DealView{}, domain.NewError(errcodes.Forbidden, "only the intermediary can select alternatives")
	}

	deal, err := s.load(ctx, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if deal.Type != value.DealTypeBuyerToIntermediary {
		return entity.DealView{}, domain.NewError(errcodes.Forbidden,
			"alternatives can only be selected on buyer deals")
	}

	if deal.IsTerminal() {
		return entity.DealView{}, domain.NewError(errcodes.DealNotEditable,
			fmt.Sprintf("deal is already %s", deal.Stage))
	}

	idx := deal.ItemIndex(req.UnitID)
	if idx < 0 {
		return entity.DealView{}, domain.NewError(errcodes.UnitNotFound, "line item not found in deal")
	}

	item := &deal.Items[idx]

	alt, ok := item.Alternative(req.AlternativeUnitID)
	if !ok {
		return entity.DealView{}, domain.NewError(errcodes.AlternativeNotFound,
			"unit is not a suggested alternative for this item")
	}

	switch item.SelectedAlternative {
	case alt.UnitID:
		logger(ctx).Info("alternative already selected, repeating cascade",
			slog.String(logx.FieldUnitID, alt.UnitID.String()))
	case uuid.Nil:
		if err := s.swap(ctx, identity, deal, item, alt); err != nil {
			return entity.DealView{}, err
		}
	default:
		return entity.DealView{}, domain.NewError(errcodes.AlternativeAlreadySelected,
			"another alternative is already selected for this item")
	}

	if err := s.cascadeSubstitution(ctx, identity.UserID, deal, *item); err != nil {
		s.recorder.SideEffectFailure("cascade")
		logger(ctx).Error("substitution cascade incomplete", logx.Error(err))
	}

	return role.View(deal, identity), nil
}

func (s *Service) swap(
	ctx context.Context,
	identity entity.Identity,
	deal *entity.Deal,
	item *entity.LineItem,
	alt entity.Alternative,
) error {
	units, err := s.units.GetByIDs(ctx, []uuid.UUID{alt.UnitID})
	if err != nil {
		return fmt.Errorf("units.GetByIDs: %w", err)
	}

	if len(units) == 0 {
		return domain.NewError(errcodes.UnitNotFound, "alternative unit not found")
	}

	price := units[0].Price
	if !price.IsPositive() {
		return domain.NewError(errcodes.InvalidUnitPrice, "alternative unit has no valid price")
	}

	oldPrice := item.Price
	item.StruckOut = true
	item.OriginalPriceBeforeSwap = decimal.NewNullDecimal(oldPrice)
	item.SelectedAlternative = alt.UnitID
	item.Price = price
	deal.RecalculateAmount()

	details := fmt.Sprintf("Unit %s replaced by alternative %s: $%s -> $%s",
		units[0].CertificateNumber, alt.UnitID, oldPrice.StringFixed(centPlaces), price.StringFixed(centPlaces))
	deal.Log(s.now(), value.ActivityUnitSubstituted, identity.UserID, details)

	if err := s.save(ctx, deal); err != nil {
		return err
	}

	if err := s.units.MarkAvailable(ctx, []uuid.UUID{item.UnitID}); err != nil {
		s.recorder.SideEffectFailure("inventory")
		logger(ctx).Error("release original unit failed", logx.Error(err))
	}

	if err := s.units.MarkOnDeal(ctx, []uuid.UUID{alt.UnitID}, deal.ID); err != nil {
		s.recorder.SideEffectFailure("inventory")
		logger(ctx).Error("reserve alternative unit failed", logx.Error(err))
	}

	s.notify(ctx, value.EventUnitSubstituted, deal, details)

	logger(ctx).Info("unit substituted",
		slog.String(logx.FieldUnitID, item.UnitID.String()),
		slog.String("alternative", alt.UnitID.String()),
		logx.Amount(deal.Amount),
	)

	return nil
}

// cascadeSubstitution отменяет сделку с продавцом исходной единицы и
// спекулятивные сделки по остальным кандидатам строки.
func (s *Service) cascadeSubstitution(
	ctx context.Context,
	by uuid.UUID,
	deal *entity.Deal,
	item entity.LineItem,
) error {
	selected, _ := item.Alternative(item.SelectedAlternative)

	targets := lo.FilterMap(item.Alternatives, func(a entity.Alternative, _ int) (uuid.UUID, bool) {
		return a.PairedDealID, a.PairedDealID != uuid.Nil && a.UnitID != selected.UnitID
	})

	paired, err := s.deals.GetByIDs(ctx, lo.Without(deal.PrimaryPairedDealIDs(), selected.PairedDealID))
	if err != nil {
		return fmt.Errorf("deals.GetByIDs: %w", err)
	}

	for _, p := range paired {
		if p.FirstUnitID() == item.UnitID {
			targets = append(targets, p.ID)
		}
	}

	return s.cancelPaired(ctx, by, deal, targets,
		fmt.Sprintf("Unit substituted in buyer deal %s", deal.Number))
}
