package deal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/role"
	"gem_market/internal/domain/service/transition"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

// ChangeStageRequest пустые Stage и Status означают "оставить как есть"
// либо статус по умолчанию для новой стадии.
type ChangeStageRequest struct {
	Stage        value.Stage
	Status       value.Status
	ShippingCost decimal.NullDecimal
	Notes        string
	FinalTerms   *FinalTermsInput
}

// FinalTermsInput явные итоговые условия при переходе к оплате.
type FinalTermsInput struct {
	Price           decimal.Decimal
	Lines           []TermsLineInput
	DeliveryTerms   string
	AdditionalTerms string
}

type TermsLineInput struct {
	UnitID uuid.UUID
	Price  decimal.Decimal
}

const originalTermsNote = "Original terms accepted without negotiation"

// ChangeStage меняет стадию и/или статус сделки, стоимость доставки и заметки.
func (s *Service) ChangeStage(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	req ChangeStageRequest,
) (entity.DealView, error) {
	deal, r, err := s.loadForRole(ctx, identity, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if deal.IsTerminal() {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStageTransition,
			fmt.Sprintf("deal is already %s", deal.Stage))
	}

	if req.ShippingCost.Valid && req.ShippingCost.Decimal.IsNegative() {
		return entity.DealView{}, domain.NewError(errcodes.NegativeShippingCost, "shipping cost cannot be negative")
	}

	stage, status := targetOf(deal, req)
	if !stage.Valid() || !status.Valid() {
		return entity.DealView{}, domain.NewError(errcodes.ValidationError,
			fmt.Sprintf("unknown stage %q or status %q", stage, status))
	}

	moving := stage != deal.Stage || status != deal.Status
	if moving {
		if stage != deal.Stage && !transition.IsValidStageTransition(deal.Stage, stage) {
			return entity.DealView{}, domain.NewError(errcodes.InvalidStageTransition,
				fmt.Sprintf("invalid stage transition from %s to %s", deal.Stage, stage))
		}

		if !transition.IsValidMove(deal.Stage, stage, deal.Status, status) {
			return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
				fmt.Sprintf("invalid status transition from %s to %s", deal.Status, status))
		}
	}

	now := s.now()

	if req.ShippingCost.Valid && !req.ShippingCost.Decimal.Equal(deal.Shipping.Cost) {
		deal.Log(now, value.ActivityShippingChanged, identity.UserID,
			fmt.Sprintf("Shipping cost changed from $%s to $%s",
				deal.Shipping.Cost.StringFixed(centPlaces), req.ShippingCost.Decimal.StringFixed(centPlaces)))
		deal.Shipping.Cost = req.ShippingCost.Decimal
	}

	if req.Notes != "" {
		deal.Notes = req.Notes
	}

	if !moving {
		deal.LastActionAt = now
		if err := s.save(ctx, deal); err != nil {
			return entity.DealView{}, err
		}

		return role.View(deal, identity), nil
	}

	details := fmt.Sprintf("Deal moved to %s/%s by %s", stage, status, r)

	switch stage {
	case value.StageCompleted:
		if err := s.complete(ctx, identity.UserID, deal, details); err != nil {
			return entity.DealView{}, err
		}

		return role.View(deal, identity), nil
	case value.StageCancelled:
		if err := s.cancel(ctx, identity.UserID, deal, details); err != nil {
			return entity.DealView{}, err
		}

		return role.View(deal, identity), nil
	}

	if deal.Stage == value.StageNegotiation && stage == value.StagePaymentDelivery {
		terms, err := s.finalTerms(deal, req.FinalTerms, now)
		if err != nil {
			return entity.DealView{}, err
		}

		deal.Negotiation.FinalTerms = &terms
		deal.Negotiation.EndedAt = &now
	}

	if stage == value.StageNegotiation && deal.Negotiation.StartedAt == nil {
		deal.Negotiation.StartedAt = &now
	}

	stageChanged := stage != deal.Stage
	deal.Stage = stage
	deal.Status = status

	action := value.ActivityStatusChanged
	if stageChanged {
		action = value.ActivityStageChanged
	}
	deal.Log(now, action, identity.UserID, details)

	if err := s.save(ctx, deal); err != nil {
		return entity.DealView{}, err
	}

	if stageChanged {
		s.recorder.DealTransition(deal.Type, deal.Stage)
	}
	s.notify(ctx, value.EventStageChanged, deal, details)

	logger(ctx).Info("deal stage changed",
		slog.String(logx.FieldStage, deal.Stage.String()),
		slog.String(logx.FieldStatus, deal.Status.String()),
	)

	return role.View(deal, identity), nil
}

// targetOf вычисляет итоговую пару стадия/статус из запроса.
func targetOf(deal *entity.Deal, req ChangeStageRequest) (value.Stage, value.Status) {
	stage, status := req.Stage, req.Status

	if stage == "" {
		switch status {
		case value.StatusCompleted:
			stage = value.StageCompleted
		case value.StatusCancelled:
			stage = value.StageCancelled
		default:
			stage = deal.Stage
		}
	}

	if status == "" {
		if stage == deal.Stage {
			status = deal.Status
		} else {
			status = value.DefaultStatus(stage)
		}
	}

	return stage, status
}

// finalTerms итоговые условия при выходе из переговоров: явные из запроса,
// последнее предложение либо исходные цены, если предложений не было.
func (s *Service) finalTerms(deal *entity.Deal, input *FinalTermsInput, now time.Time) (entity.FinalTerms, error) {
	if input != nil {
		return explicitTerms(deal, input, now)
	}

	if last, ok := deal.Negotiation.LastProposal(); ok {
		terms := last.Terms(now)
		if terms.ShippingCost.IsZero() {
			terms.ShippingCost = deal.Shipping.Cost
		}

		return terms, nil
	}

	return entity.FinalTerms{
		Price: deal.LinesTotal(),
		Lines: lo.Map(deal.Items, func(item entity.LineItem, _ int) entity.TermsLine {
			return entity.TermsLine{
				UnitID:          item.EffectiveUnitID(),
				Price:           item.Price,
				OriginalPrice:   item.Price,
				DiscountPercent: decimal.Zero,
			}
		}),
		AdditionalTerms: originalTermsNote,
		ShippingCost:    deal.Shipping.Cost,
		AcceptedAt:      now,
	}, nil
}

func explicitTerms(deal *entity.Deal, input *FinalTermsInput, now time.Time) (entity.FinalTerms, error) {
	if !input.Price.IsPositive() {
		return entity.FinalTerms{}, domain.NewError(errcodes.InvalidFinalTerms, "final price must be positive")
	}

	lines := make([]entity.TermsLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if !line.Price.IsPositive() {
			return entity.FinalTerms{}, domain.NewError(errcodes.InvalidFinalTerms,
				fmt.Sprintf("price for unit %s must be positive", line.UnitID))
		}

		original := line.Price
		if idx := deal.ItemIndex(line.UnitID); idx >= 0 {
			original = deal.Items[idx].Price
		}

		lines = append(lines, entity.TermsLine{
			UnitID:          line.UnitID,
			Price:           line.Price,
			OriginalPrice:   original,
			DiscountPercent: discountPercent(original, line.Price).Round(centPlaces),
		})
	}

	return entity.FinalTerms{
		Price:           input.Price,
		Lines:           lines,
		DeliveryTerms:   input.DeliveryTerms,
		AdditionalTerms: input.AdditionalTerms,
		ShippingCost:    deal.Shipping.Cost,
		AcceptedAt:      now,
	}, nil
}
