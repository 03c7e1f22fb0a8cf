package deal

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/role"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	return p
}

// Get сделка глазами пользователя.
func (s *Service) Get(ctx context.Context, identity entity.Identity, dealID uuid.UUID) (entity.DealView, error) {
	deal, err := s.load(ctx, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	if !role.HasAccess(deal, identity) {
		return entity.DealView{}, domain.NewError(errcodes.Forbidden, "not authorized to view this deal")
	}

	return role.View(deal, identity), nil
}

// ListBuyerDeals сделки, в которых пользователь покупает. Посредник видит
// свои закупки у продавцов.
func (s *Service) ListBuyerDeals(ctx context.Context, identity entity.Identity, page Page) ([]entity.DealView, error) {
	page = page.normalize()
	filter := entity.DealFilter{
		Type:    value.DealTypeBuyerToIntermediary,
		BuyerID: identity.UserID,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}

	if identity.Privileged {
		management, err := s.managementCompany(ctx)
		if err != nil {
			return nil, err
		}

		filter = entity.DealFilter{
			Type:           value.DealTypeIntermediaryToSeller,
			BuyerCompanyID: management.ID,
			Limit:          page.Limit,
			Offset:         page.Offset,
		}
	}

	return s.list(ctx, identity, filter)
}

// ListSellerDeals сделки, в которых продаёт пользователь или его компания.
// Посредник видит все продажи покупателям.
func (s *Service) ListSellerDeals(ctx context.Context, identity entity.Identity, page Page) ([]entity.DealView, error) {
	page = page.normalize()
	filter := entity.DealFilter{
		Type:        value.DealTypeIntermediaryToSeller,
		SellerParty: &entity.Party{UserID: identity.UserID, CompanyID: identity.CompanyID},
		Limit:       page.Limit,
		Offset:      page.Offset,
	}

	if identity.Privileged {
		filter = entity.DealFilter{
			Type:   value.DealTypeBuyerToIntermediary,
			Limit:  page.Limit,
			Offset: page.Offset,
		}
	}

	return s.list(ctx, identity, filter)
}

func (s *Service) list(ctx context.Context, identity entity.Identity, filter entity.DealFilter) ([]entity.DealView, error) {
	deals, err := s.deals.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("deals.List: %w", err)
	}

	return lo.Map(deals, func(deal *entity.Deal, _ int) entity.DealView {
		return role.View(deal, identity)
	}), nil
}

// Dashboard сводка посредника по всем сделкам, новые первыми.
func (s *Service) Dashboard(ctx context.Context, identity entity.Identity, page Page) ([]entity.DashboardEntry, error) {
	if !identity.Privileged {
		return nil, domain.NewError(errcodes.Forbidden, "dashboard is available to supervisors only")
	}

	page = page.normalize()

	deals, err := s.deals.List(ctx, entity.DealFilter{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("deals.List: %w", err)
	}

	buyerDealIDs := lo.Uniq(lo.FilterMap(deals, func(d *entity.Deal, _ int) (uuid.UUID, bool) {
		return d.PairedDealID, d.Type == value.DealTypeIntermediaryToSeller && d.PairedDealID != uuid.Nil
	}))

	buyerDeals, err := s.deals.GetByIDs(ctx, buyerDealIDs)
	if err != nil {
		return nil, fmt.Errorf("deals.GetByIDs: %w", err)
	}
	buyerByID := lo.KeyBy(buyerDeals, func(d *entity.Deal) uuid.UUID { return d.ID })

	companyIDs := lo.Uniq(lo.Map(deals, func(d *entity.Deal, _ int) uuid.UUID {
		return counterpartyCompany(d)
	}))

	companies, err := s.companies.GetByIDs(ctx, lo.Without(companyIDs, uuid.Nil))
	if err != nil {
		return nil, fmt.Errorf("companies.GetByIDs: %w", err)
	}
	nameByID := lo.SliceToMap(companies, func(c *entity.Company) (uuid.UUID, string) { return c.ID, c.Name })

	entries := lo.Map(deals, func(d *entity.Deal, _ int) entity.DashboardEntry {
		entry := entity.DashboardEntry{
			Deal:             d,
			Kind:             value.DashboardMainCustomerSale,
			CounterpartyName: nameByID[counterpartyCompany(d)],
		}

		if d.Type != value.DealTypeIntermediaryToSeller {
			return entry
		}

		buyerDeal, ok := buyerByID[d.PairedDealID]
		if !ok {
			entry.Kind = value.DashboardStandaloneSupplierPurchase
			return entry
		}

		entry.LinkedDealNumber = buyerDeal.Number
		entry.Kind = value.DashboardPrimarySupplierPurchase
		if lo.Contains(buyerDeal.AlternativeDealIDs(), d.ID) {
			entry.Kind = value.DashboardAlternativeSupplierPurchase
		}

		return entry
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Deal.CreatedAt.After(entries[j].Deal.CreatedAt)
	})

	return entries, nil
}

// counterpartyCompany компания по другую сторону от посредника.
func counterpartyCompany(d *entity.Deal) uuid.UUID {
	if d.Type == value.DealTypeBuyerToIntermediary {
		return d.BuyerCompanyID
	}

	return d.SellerCompanyID
}
