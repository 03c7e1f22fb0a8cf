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
	"gem_market/internal/domain/service/transition"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

type InitiateRequest struct {
	CartItemIDs     []uuid.UUID
	ShippingAddress entity.Address
}

type InitiateResult struct {
	BuyerDeal          entity.DealView
	SellerDealIDs      []uuid.UUID
	AlternativeDealIDs []uuid.UUID
}

type checkoutLine struct {
	unit    *entity.Unit
	company *entity.Company
	own     bool
}

type sellerGroup struct {
	rep     entity.Representative
	company *entity.Company
	units   []*entity.Unit
}

// Initiate оформляет корзину: сделку покупателя с посредником, сделки
// посредника с продавцами и спекулятивные сделки под замены.
func (s *Service) Initiate(ctx context.Context, identity entity.Identity, req InitiateRequest) (InitiateResult, error) {
	if len(req.CartItemIDs) == 0 {
		return InitiateResult{}, domain.NewError(errcodes.InvalidCartSelection, "no cart items specified for checkout")
	}

	cartItemIDs := lo.Uniq(req.CartItemIDs)

	items, err := s.carts.GetItems(ctx, identity.UserID, cartItemIDs)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("carts.GetItems: %w", err)
	}

	if len(items) != len(cartItemIDs) {
		found := lo.Map(items, func(item entity.CartItem, _ int) uuid.UUID { return item.ID })
		missing, _ := lo.Difference(cartItemIDs, found)
		return InitiateResult{}, domain.NewError(errcodes.InvalidCartSelection,
			fmt.Sprintf("cart items not found: %v", missing))
	}

	buyerCompany, err := s.company(ctx, identity.CompanyID)
	if err != nil {
		return InitiateResult{}, err
	}

	management, err := s.managementCompany(ctx)
	if err != nil {
		return InitiateResult{}, err
	}

	lines, err := s.checkoutLines(ctx, items, management)
	if err != nil {
		return InitiateResult{}, err
	}

	groups, err := s.groupBySeller(ctx, lines)
	if err != nil {
		return InitiateResult{}, err
	}

	buyerDeal, err := s.createBuyerDeal(ctx, identity, buyerCompany, management, lines, req.ShippingAddress)
	if err != nil {
		return InitiateResult{}, err
	}

	ctx = withDealLogger(ctx, buyerDeal)

	sellerDealIDs := make([]uuid.UUID, 0, len(groups))

	for i, group := range groups {
		sellerDeal, err := s.createSellerDeal(ctx, identity, buyerDeal, management, group, letterSuffix(i))
		if err != nil {
			return InitiateResult{}, fmt.Errorf("seller deal for %s: %w", group.company.Name, err)
		}
		sellerDealIDs = append(sellerDealIDs, sellerDeal.ID)
	}

	alternativeDealIDs := s.attachAlternatives(ctx, identity, buyerDeal, management, lines)

	buyerDeal.PairedDealIDs = append(append([]uuid.UUID{}, sellerDealIDs...), alternativeDealIDs...)
	buyerDeal.LastActionAt = s.now()

	ownCount := lo.CountBy(lines, func(line checkoutLine) bool { return line.own })
	if len(sellerDealIDs) == 0 && ownCount > 0 {
		s.autoAdvanceDirect(identity, buyerDeal)
	}

	if err := s.save(ctx, buyerDeal); err != nil {
		return InitiateResult{}, err
	}

	unitIDs := lo.Map(lines, func(line checkoutLine, _ int) uuid.UUID { return line.unit.ID })
	if err := s.units.MarkOnDeal(ctx, unitIDs, buyerDeal.ID); err != nil {
		return InitiateResult{}, fmt.Errorf("units.MarkOnDeal: %w", err)
	}

	if err := s.carts.RemoveItems(ctx, identity.UserID, cartItemIDs); err != nil {
		logger(ctx).Error("failed to clear checked out cart items", logx.Error(err))
	}

	if _, err := s.ReconcilePairing(ctx, buyerDeal.ID); err != nil {
		logger(ctx).Error("pairing reconciliation after checkout failed", logx.Error(err))
	}

	s.recorder.DealInitiated()
	s.notify(ctx, value.EventDealCreated, buyerDeal,
		fmt.Sprintf("%d seller deals, %d alternative deals", len(sellerDealIDs), len(alternativeDealIDs)))

	logger(ctx).Info("deal initiated",
		slog.Int("seller-deals", len(sellerDealIDs)),
		slog.Int("alternative-deals", len(alternativeDealIDs)),
		logx.Amount(buyerDeal.Amount),
	)

	return InitiateResult{
		BuyerDeal:          role.View(buyerDeal, identity),
		SellerDealIDs:      sellerDealIDs,
		AlternativeDealIDs: alternativeDealIDs,
	}, nil
}

func (s *Service) checkoutLines(
	ctx context.Context,
	items []entity.CartItem,
	management *entity.Company,
) ([]checkoutLine, error) {
	unitIDs := lo.Map(items, func(item entity.CartItem, _ int) uuid.UUID { return item.UnitID })

	units, err := s.units.GetByIDs(ctx, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("units.GetByIDs: %w", err)
	}

	byID := lo.KeyBy(units, func(u *entity.Unit) uuid.UUID { return u.ID })
	lines := make([]checkoutLine, 0, len(items))

	for _, item := range items {
		unit, ok := byID[item.UnitID]
		if !ok {
			return nil, domain.NewError(errcodes.UnitNotFound, fmt.Sprintf("unit %s not found", item.UnitID))
		}

		if !unit.Price.IsPositive() {
			return nil, domain.NewError(errcodes.InvalidUnitPrice, fmt.Sprintf("invalid price for unit %s", unit.ID))
		}

		company, err := s.company(ctx, unit.CompanyID)
		if err != nil {
			if domain.HasCode(err, errcodes.CompanyNotFound) {
				return nil, domain.WrapError(err, errcodes.CompanyNotFound,
					fmt.Sprintf("seller company not found for unit %s", unit.ID))
			}
			return nil, err
		}

		lines = append(lines, checkoutLine{
			unit:    unit,
			company: company,
			own:     company.ID == management.ID,
		})
	}

	return lines, nil
}

// groupBySeller группирует чужие единицы по представителю продавца, сохраняя
// порядок корзины. Собственный товар посредника сделок с продавцом не требует.
func (s *Service) groupBySeller(ctx context.Context, lines []checkoutLine) ([]*sellerGroup, error) {
	var groups []*sellerGroup
	byRep := make(map[uuid.UUID]*sellerGroup)

	for _, line := range lines {
		if line.own {
			continue
		}

		rep, err := s.representative(ctx, line.company)
		if err != nil {
			return nil, err
		}

		group, ok := byRep[rep.UserID]
		if !ok {
			group = &sellerGroup{rep: rep, company: line.company}
			byRep[rep.UserID] = group
			groups = append(groups, group)
		}
		group.units = append(group.units, line.unit)
	}

	return groups, nil
}

func (s *Service) createBuyerDeal(
	ctx context.Context,
	identity entity.Identity,
	buyerCompany, management *entity.Company,
	lines []checkoutLine,
	address entity.Address,
) (*entity.Deal, error) {
	number, err := s.nextNumber(ctx, buyerCounter, s.settings.BuyerCounterStart)
	if err != nil {
		return nil, err
	}

	now := s.now()
	address.Recipient = buyerCompany.Name

	deal := &entity.Deal{
		ID:     uuid.New(),
		Number: number,
		Type:   value.DealTypeBuyerToIntermediary,
		Stage:  value.StageRequest,
		Status: value.StatusPending,
		Items: lo.Map(lines, func(line checkoutLine, _ int) entity.LineItem {
			return entity.LineItem{UnitID: line.unit.ID, Price: line.unit.Price}
		}),
		Fee:                   decimal.Zero,
		BuyerID:               identity.UserID,
		BuyerCompanyID:        buyerCompany.ID,
		SellerCompanyID:       management.ID,
		IntermediaryCompanyID: management.ID,
		Request: entity.RequestDetails{
			RequestedAt: now,
			RequestedBy: identity.UserID,
			Notes:       "Deal initiated from cart checkout",
		},
		Shipping: entity.ShippingDetails{
			Cost:    s.settings.DefaultShippingCost,
			Address: address,
		},
		CreatedAt: now,
	}
	deal.RecalculateAmount()
	deal.Log(now, value.ActivityDealCreated, identity.UserID, "Buyer initiated deal for products purchase")

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("deals.Create: %w", err)
	}

	return deal, nil
}

func (s *Service) createSellerDeal(
	ctx context.Context,
	identity entity.Identity,
	buyerDeal *entity.Deal,
	management *entity.Company,
	group *sellerGroup,
	suffix string,
) (*entity.Deal, error) {
	number, err := s.nextNumber(ctx, sellerCounter, s.settings.SellerCounterStart)
	if err != nil {
		return nil, err
	}

	items := lo.Map(group.units, func(u *entity.Unit, _ int) entity.LineItem {
		return entity.LineItem{UnitID: u.ID, Price: s.sellerPrice(u.Price)}
	})

	deal := s.newSupplierDeal(identity, buyerDeal, management, group.rep, number+suffix, items)
	deal.Shipping.Cost = s.settings.DefaultShippingCost
	deal.Request.Notes = "Deal initiated from cart checkout - seller side"
	deal.Log(deal.CreatedAt, value.ActivityDealCreated, identity.UserID, "System created seller-side deal")

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("deals.Create: %w", err)
	}

	return deal, nil
}

func (s *Service) newSupplierDeal(
	identity entity.Identity,
	buyerDeal *entity.Deal,
	management *entity.Company,
	rep entity.Representative,
	number string,
	items []entity.LineItem,
) *entity.Deal {
	now := s.now()

	deal := &entity.Deal{
		ID:                    uuid.New(),
		Number:                number,
		Type:                  value.DealTypeIntermediaryToSeller,
		Stage:                 value.StageRequest,
		Status:                value.StatusPending,
		Items:                 items,
		BuyerCompanyID:        management.ID,
		SellerID:              rep.UserID,
		SellerCompanyID:       rep.CompanyID,
		IntermediaryCompanyID: management.ID,
		PairedDealID:          buyerDeal.ID,
		Request: entity.RequestDetails{
			RequestedAt: now,
			RequestedBy: identity.UserID,
		},
		Shipping: entity.ShippingDetails{
			Address: management.ReceivingAddress(),
		},
		CreatedAt: now,
	}
	deal.RecalculateAmount()
	deal.Fee = s.sellerFee(deal.Amount)

	return deal
}

// attachAlternatives подбирает замены для каждой строки и создаёт под них
// сделки с продавцами. Ошибки здесь не прерывают оформление.
func (s *Service) attachAlternatives(
	ctx context.Context,
	identity entity.Identity,
	buyerDeal *entity.Deal,
	management *entity.Company,
	lines []checkoutLine,
) []uuid.UUID {
	excluded := lo.Map(lines, func(line checkoutLine, _ int) uuid.UUID { return line.unit.ID })

	var (
		created []uuid.UUID
		seq     int
	)

	for i, line := range lines {
		candidates, err := s.units.FindAlternatives(ctx, s.alternativeQuery(line.unit, excluded))
		if err != nil {
			s.recorder.SideEffectFailure("alternative_search")
			logger(ctx).Error("alternative search failed",
				slog.String(logx.FieldUnitID, line.unit.ID.String()), logx.Error(err))
			continue
		}

		for _, candidate := range candidates {
			alt := entity.Alternative{UnitID: candidate.ID}

			altDeal, err := s.createAlternativeDeal(ctx, identity, buyerDeal, management, candidate, seq)
			seq++
			if err != nil {
				s.recorder.SideEffectFailure("alternative_deal")
				logger(ctx).Warn("alternative deal skipped",
					slog.String(logx.FieldUnitID, candidate.ID.String()), logx.Error(err))
			} else {
				alt.PairedDealID = altDeal.ID
				created = append(created, altDeal.ID)
			}

			buyerDeal.Items[i].Alternatives = append(buyerDeal.Items[i].Alternatives, alt)
		}
	}

	return created
}

func (s *Service) alternativeQuery(unit *entity.Unit, excluded []uuid.UUID) entity.AlternativeQuery {
	carat := unit.Attributes.Carat

	return entity.AlternativeQuery{
		Shape:        unit.Attributes.Shape,
		CaratMin:     carat.Sub(s.settings.CaratTolerance),
		CaratMax:     carat.Add(s.settings.CaratTolerance),
		Clarity:      unit.Attributes.Clarity,
		Colors:       value.ColorBand(unit.Attributes.Color),
		ExcludeUnits: excluded,
		Limit:        s.settings.AlternativesLimit,
	}
}

func (s *Service) createAlternativeDeal(
	ctx context.Context,
	identity entity.Identity,
	buyerDeal *entity.Deal,
	management *entity.Company,
	unit *entity.Unit,
	seq int,
) (*entity.Deal, error) {
	company, err := s.company(ctx, unit.CompanyID)
	if err != nil {
		return nil, err
	}

	rep, err := s.representative(ctx, company)
	if err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx, sellerCounter, s.settings.SellerCounterStart)
	if err != nil {
		return nil, err
	}

	items := []entity.LineItem{{UnitID: unit.ID, Price: s.sellerPrice(unit.Price)}}

	deal := s.newSupplierDeal(identity, buyerDeal, management, rep, fmt.Sprintf("%salts%d", number, seq), items)
	deal.Shipping.Cost = s.settings.InternalShippingCost
	deal.Request.Notes = fmt.Sprintf("Purchase request for alternative to product in deal #%s", buyerDeal.Number)
	deal.Log(deal.CreatedAt, value.ActivityDealCreated, identity.UserID,
		fmt.Sprintf("System created deal for alternative product %s %sct",
			unit.Attributes.Shape, unit.Attributes.Carat.String()))

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("deals.Create: %w", err)
	}

	return deal, nil
}

// autoAdvanceDirect переводит прямую сделку в переговоры: подтверждать
// запрос некому, посредник продаёт свой товар.
func (s *Service) autoAdvanceDirect(identity entity.Identity, deal *entity.Deal) {
	if !transition.IsValidMove(deal.Stage, value.StageNegotiation, deal.Status, value.StatusNegotiating) {
		return
	}

	deal.Stage = value.StageNegotiation
	deal.Status = value.StatusNegotiating
	deal.Log(s.now(), value.ActivityStageChanged, identity.UserID,
		"Direct purchase from intermediary stock - automatically moved to negotiation stage")
}

func (s *Service) nextNumber(ctx context.Context, counter string, start int64) (string, error) {
	number, err := s.sequences.Next(ctx, counter, start, s.settings.CounterDigits)
	if err != nil {
		return "", domain.WrapError(err, errcodes.SequenceUnavailable, "failed to mint deal number")
	}

	return number, nil
}

func letterSuffix(i int) string {
	return string(rune('a' + i%26))
}
