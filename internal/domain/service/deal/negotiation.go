package deal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

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

type ProposeRequest struct {
	Price           decimal.Decimal
	DeliveryTerms   string
	AdditionalTerms string
	ShippingCost    decimal.NullDecimal
}

//nolint:gochecknoglobals
var finalOfferMarkers = []string{"maintains original price", "no negotiation"}

// Propose добавляет предложение цены к сделке на стадии переговоров.
func (s *Service) Propose(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	req ProposeRequest,
) (entity.DealView, error) {
	deal, r, err := s.loadForRole(ctx, identity, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if deal.Stage != value.StageNegotiation {
		return entity.DealView{}, domain.NewError(errcodes.DealNotEditable,
			fmt.Sprintf("cannot submit proposal when deal is in %s stage", deal.Stage))
	}

	if !lo.Contains([]value.Status{
		value.StatusNegotiating,
		value.StatusTermsProposed,
		value.StatusSellerCounterOffer,
	}, deal.Status) {
		return entity.DealView{}, domain.NewError(errcodes.DealNotEditable,
			fmt.Sprintf("cannot submit proposal when deal status is %s", deal.Status))
	}

	if !req.Price.IsPositive() {
		return entity.DealView{}, domain.NewError(errcodes.InvalidProposalPrice, "invalid total price")
	}

	if req.ShippingCost.Valid && req.ShippingCost.Decimal.IsNegative() {
		return entity.DealView{}, domain.NewError(errcodes.NegativeShippingCost, "shipping cost cannot be negative")
	}

	original := deal.LinesTotal()
	if !original.IsPositive() {
		return entity.DealView{}, domain.NewError(errcodes.InvalidProposalPrice, "deal has no priced items")
	}

	discount := discountPercent(original, req.Price)

	maxDiscount := s.settings.BuyerDiscountCap
	if identity.Privileged {
		maxDiscount = s.settings.PrivilegedDiscountCap
	}

	if discount.GreaterThan(maxDiscount) {
		return entity.DealView{}, domain.NewError(errcodes.DiscountExceeded,
			fmt.Sprintf("total discount of %s%% exceeds maximum allowed %s%%",
				discount.StringFixed(1), maxDiscount.String()))
	}

	nextStatus := proposalStatus(deal.Status, r, req.AdditionalTerms)
	if nextStatus != deal.Status &&
		!transition.IsValidStatusTransition(deal.Stage, deal.Stage, deal.Status, nextStatus) {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("invalid status transition from %s to %s", deal.Status, nextStatus))
	}

	shippingCost := deal.Shipping.Cost
	if req.ShippingCost.Valid {
		shippingCost = req.ShippingCost.Decimal
	}

	now := s.now()
	proposal := entity.Proposal{
		ID:              uuid.New(),
		ProposedBy:      identity.UserID,
		ProposerRole:    r,
		ProposedAt:      now,
		Price:           req.Price,
		Lines:           proposedLines(deal.Items, req.Price, discount),
		DeliveryTerms:   req.DeliveryTerms,
		AdditionalTerms: req.AdditionalTerms,
		ShippingCost:    shippingCost,
	}

	if deal.Negotiation.StartedAt == nil {
		deal.Negotiation.StartedAt = &now
	}
	deal.Negotiation.Proposals = append(deal.Negotiation.Proposals, proposal)
	deal.Status = nextStatus

	details := fmt.Sprintf("New terms proposed by %s: %s%% total discount", r, discount.StringFixed(1))
	if req.ShippingCost.Valid {
		details += fmt.Sprintf(", Shipping $%s", shippingCost.StringFixed(centPlaces))
	}
	deal.Log(now, value.ActivityTermsProposed, identity.UserID, details)

	if err := s.save(ctx, deal); err != nil {
		return entity.DealView{}, err
	}

	s.notify(ctx, value.EventTermsProposed, deal, details)

	logger(ctx).Info("terms proposed",
		slog.String("role", r.String()),
		slog.String("price", req.Price.StringFixed(centPlaces)),
		slog.String(logx.FieldStatus, deal.Status.String()),
	)

	return role.View(deal, identity), nil
}

// proposalStatus статус сделки после предложения от роли r.
func proposalStatus(current value.Status, r value.Role, additionalTerms string) value.Status {
	sellerStatus := value.StatusSellerCounterOffer
	if isFinalOffer(additionalTerms) {
		sellerStatus = value.StatusSellerFinalOffer
	}

	switch r {
	case value.RoleBuyer, value.RoleIntermediaryBuyer:
		return value.StatusTermsProposed
	case value.RoleSeller, value.RoleIntermediarySeller:
		return sellerStatus
	case value.RoleIntermediaryDual:
		if current == value.StatusNegotiating || current == value.StatusTermsProposed {
			return sellerStatus
		}
		return value.StatusTermsProposed
	default:
		return current
	}
}

func isFinalOffer(additionalTerms string) bool {
	for _, marker := range finalOfferMarkers {
		if strings.Contains(additionalTerms, marker) {
			return true
		}
	}

	return false
}

func proposedLines(items []entity.LineItem, price, discount decimal.Decimal) []entity.TermsLine {
	base := lo.Map(items, func(item entity.LineItem, _ int) decimal.Decimal { return item.Price })
	prices := spread(base, price)

	return lo.Map(items, func(item entity.LineItem, i int) entity.TermsLine {
		return entity.TermsLine{
			UnitID:          item.EffectiveUnitID(),
			Price:           prices[i],
			OriginalPrice:   item.Price,
			DiscountPercent: discount.Round(centPlaces),
		}
	})
}

// Accept принимает предложение и переводит сделку к оплате.
func (s *Service) Accept(
	ctx context.Context,
	identity entity.Identity,
	dealID, proposalID uuid.UUID,
) (entity.DealView, error) {
	deal, r, err := s.loadForRole(ctx, identity, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if deal.Stage != value.StageNegotiation {
		return entity.DealView{}, domain.NewError(errcodes.DealNotEditable, "deal is not in negotiation stage")
	}

	proposal, ok := deal.Negotiation.Proposal(proposalID)
	if !ok {
		return entity.DealView{}, domain.NewError(errcodes.ProposalNotFound, "proposal not found")
	}

	if proposal.ProposedBy == identity.UserID && r != value.RoleIntermediaryDual {
		return entity.DealView{}, domain.NewError(errcodes.SelfAcceptance, "cannot accept your own proposal")
	}

	if !transition.IsValidMove(deal.Stage, value.StagePaymentDelivery, deal.Status, value.StatusAwaitingInvoice) {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("cannot accept terms when deal status is %s", deal.Status))
	}

	now := s.now()
	terms := proposal.Terms(now)
	if terms.ShippingCost.IsZero() {
		terms.ShippingCost = deal.Shipping.Cost
	}

	deal.Negotiation.Decisions = append(deal.Negotiation.Decisions, entity.Decision{
		ProposalID: proposal.ID,
		Status:     entity.ProposalStatusAccepted,
		DecidedBy:  identity.UserID,
		DecidedAt:  now,
	})
	deal.Negotiation.FinalTerms = &terms
	deal.Negotiation.EndedAt = &now
	deal.Shipping.Cost = terms.ShippingCost
	deal.Stage = value.StagePaymentDelivery
	deal.Status = value.StatusAwaitingInvoice

	details := fmt.Sprintf("Terms accepted by %s: Price $%s, Shipping $%s, moving to payment stage",
		r, proposal.Price.StringFixed(centPlaces), terms.ShippingCost.StringFixed(centPlaces))
	deal.Log(now, value.ActivityTermsAccepted, identity.UserID, details)

	if err := s.save(ctx, deal); err != nil {
		return entity.DealView{}, err
	}

	s.recorder.DealTransition(deal.Type, deal.Stage)
	s.notify(ctx, value.EventTermsAccepted, deal, details)

	if deal.Type == value.DealTypeIntermediaryToSeller && r == value.RoleIntermediaryBuyer &&
		deal.PairedDealID != uuid.Nil {
		if err := s.syncBuyerDeal(ctx, identity, deal); err != nil {
			s.recorder.SideEffectFailure("paired_sync")
			logger(ctx).Error("paired buyer deal sync failed", logx.Error(err))
		}
	}

	return role.View(deal, identity), nil
}

// syncBuyerDeal отражает принятие условий поставщиком в сделке покупателя.
// Пока сделка покупателя ждёт на стадии запроса, она переходит в переговоры,
// как только все живые сделки с поставщиками дошли до оплаты.
func (s *Service) syncBuyerDeal(ctx context.Context, identity entity.Identity, supplierDeal *entity.Deal) error {
	buyerDeal, err := s.load(ctx, supplierDeal.PairedDealID)
	if err != nil {
		return err
	}

	if buyerDeal.IsTerminal() {
		return nil
	}

	now := s.now()
	buyerDeal.Log(now, value.ActivityStatusChanged, identity.UserID,
		fmt.Sprintf("Terms for paired supplier deal %s accepted by intermediary.", supplierDeal.Number))

	if buyerDeal.Stage == value.StageRequest {
		ready, err := s.suppliersReady(ctx, buyerDeal)
		if err != nil {
			return err
		}

		if ready && transition.IsValidMove(buyerDeal.Stage, value.StageNegotiation, buyerDeal.Status, value.StatusNegotiating) {
			buyerDeal.Stage = value.StageNegotiation
			buyerDeal.Status = value.StatusNegotiating
			buyerDeal.Log(now, value.ActivityStageChanged, identity.UserID,
				"All supplier deals accepted, moved to negotiation stage")
		}
	}

	if err := s.save(ctx, buyerDeal); err != nil {
		return err
	}

	if buyerDeal.Stage == value.StageNegotiation {
		s.recorder.DealTransition(buyerDeal.Type, buyerDeal.Stage)
	}

	return nil
}

func (s *Service) suppliersReady(ctx context.Context, buyerDeal *entity.Deal) (bool, error) {
	ids := buyerDeal.ActiveSellerDealIDs()
	if len(ids) == 0 {
		return false, nil
	}

	suppliers, err := s.deals.GetByIDs(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("deals.GetByIDs: %w", err)
	}

	live := lo.Filter(suppliers, func(d *entity.Deal, _ int) bool { return d.Stage != value.StageCancelled })
	if len(live) == 0 {
		return false, nil
	}

	return lo.EveryBy(live, func(d *entity.Deal) bool {
		return d.Stage == value.StagePaymentDelivery || d.Stage == value.StageCompleted
	}), nil
}
