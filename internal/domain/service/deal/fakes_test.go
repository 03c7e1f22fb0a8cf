package deal_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

//nolint:gochecknoglobals
var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type store struct {
	mu         sync.Mutex
	deals      map[uuid.UUID]*entity.Deal
	units      map[uuid.UUID]*entity.Unit
	deleted    []uuid.UUID
	exclusions map[string]entity.ExclusionEntry
	sequences  map[string]int64
	companies  map[uuid.UUID]*entity.Company
	reps       map[uuid.UUID][]entity.Representative
	cart       map[uuid.UUID]entity.CartItem
	events     []entity.DealEvent
}

func newStore() *store {
	return &store{
		deals:      make(map[uuid.UUID]*entity.Deal),
		units:      make(map[uuid.UUID]*entity.Unit),
		exclusions: make(map[string]entity.ExclusionEntry),
		sequences:  make(map[string]int64),
		companies:  make(map[uuid.UUID]*entity.Company),
		reps:       make(map[uuid.UUID][]entity.Representative),
		cart:       make(map[uuid.UUID]entity.CartItem),
	}
}

func (s *store) service() *deal.Service {
	return deal.NewService(
		dealRepo{s}, unitRepo{s}, exclusionRepo{s}, sequenceRepo{s}, companyRepo{s}, cartRepo{s},
	).
		WithNotifier(notifier{s}).
		WithClock(func() time.Time { return fixedNow })
}

func (s *store) addCompany(name string) *entity.Company {
	c := &entity.Company{
		ID:              uuid.New(),
		Name:            name,
		ShippingAddress: entity.Address{Street: "1 Main St", City: "New York", Country: "US"},
	}
	s.companies[c.ID] = c

	return c
}

func (s *store) addRep(company *entity.Company, r value.MemberRole) uuid.UUID {
	rep := entity.Representative{UserID: uuid.New(), CompanyID: company.ID, Role: r, Active: true}
	s.reps[company.ID] = append(s.reps[company.ID], rep)

	return rep.UserID
}

func (s *store) addUnit(company *entity.Company, cert string, price int64, attrs value.UnitAttributes) *entity.Unit {
	u := &entity.Unit{
		ID:                uuid.New(),
		CompanyID:         company.ID,
		CertificateNumber: cert,
		Price:             decimal.NewFromInt(price),
		Attributes:        attrs,
		Status:            value.UnitStatusAvailable,
	}
	s.units[u.ID] = u

	return u
}

func (s *store) addCartItem(userID, unitID uuid.UUID) uuid.UUID {
	item := entity.CartItem{ID: uuid.New(), UserID: userID, UnitID: unitID, AddedAt: fixedNow}
	s.cart[item.ID] = item

	return item.ID
}

func (s *store) putDeal(d *entity.Deal) *entity.Deal {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.deals[d.ID] = cloneDeal(d)

	return d
}

func (s *store) deal(id uuid.UUID) *entity.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneDeal(s.deals[id])
}

func (s *store) dealsOfType(t value.DealType) []*entity.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*entity.Deal
	for _, d := range s.deals {
		if d.Type == t {
			result = append(result, cloneDeal(d))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })

	return result
}

func cloneDeal(d *entity.Deal) *entity.Deal {
	if d == nil {
		return nil
	}

	c := *d
	c.Items = lo.Map(d.Items, func(item entity.LineItem, _ int) entity.LineItem {
		item.Alternatives = append([]entity.Alternative(nil), item.Alternatives...)
		return item
	})
	c.PairedDealIDs = append([]uuid.UUID(nil), d.PairedDealIDs...)
	c.Activity = append([]entity.Activity(nil), d.Activity...)
	c.Negotiation.Proposals = append([]entity.Proposal(nil), d.Negotiation.Proposals...)
	c.Negotiation.Decisions = append([]entity.Decision(nil), d.Negotiation.Decisions...)

	return &c
}

type dealRepo struct{ s *store }

func (r dealRepo) Create(_ context.Context, d *entity.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deals[d.ID] = cloneDeal(d)

	return nil
}

func (r dealRepo) Update(_ context.Context, d *entity.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.deals[d.ID]; !ok {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}
	r.s.deals[d.ID] = cloneDeal(d)

	return nil
}

func (r dealRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.deals[id]
	if !ok {
		return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return cloneDeal(d), nil
}

func (r dealRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entity.Deal
	for _, id := range ids {
		if d, ok := r.s.deals[id]; ok {
			result = append(result, cloneDeal(d))
		}
	}

	return result, nil
}

func (r dealRepo) GetByNumber(_ context.Context, number string) (*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.deals {
		if d.Number == number {
			return cloneDeal(d), nil
		}
	}

	return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
}

func (r dealRepo) List(_ context.Context, f entity.DealFilter) ([]*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entity.Deal
	for _, d := range r.s.deals {
		switch {
		case f.Type != "" && d.Type != f.Type,
			f.BuyerID != uuid.Nil && d.BuyerID != f.BuyerID,
			f.BuyerCompanyID != uuid.Nil && d.BuyerCompanyID != f.BuyerCompanyID,
			f.SellerCompanyID != uuid.Nil && d.SellerCompanyID != f.SellerCompanyID,
			f.PairedDealID != uuid.Nil && d.PairedDealID != f.PairedDealID,
			f.OpenOnly && d.IsTerminal():
			continue
		}

		if p := f.SellerParty; p != nil && d.SellerID != p.UserID && d.SellerCompanyID != p.CompanyID {
			continue
		}

		result = append(result, cloneDeal(d))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })

	return result, nil
}

type unitRepo struct{ s *store }

func (r unitRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entity.Unit
	for _, id := range ids {
		if u, ok := r.s.units[id]; ok {
			c := *u
			result = append(result, &c)
		}
	}

	return result, nil
}

func (r unitRepo) FindAlternatives(_ context.Context, q entity.AlternativeQuery) ([]*entity.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entity.Unit
	for _, u := range r.s.units {
		a := u.Attributes
		if u.Status != value.UnitStatusAvailable ||
			a.Shape != q.Shape ||
			a.Clarity != q.Clarity ||
			a.Carat.LessThan(q.CaratMin) || a.Carat.GreaterThan(q.CaratMax) ||
			!lo.Contains(q.Colors, a.Color) ||
			lo.Contains(q.ExcludeUnits, u.ID) {
			continue
		}

		if _, excluded := r.s.exclusions[u.CertificateNumber]; excluded {
			continue
		}

		c := *u
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Attributes.Carat.LessThan(result[j].Attributes.Carat)
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}

	return result, nil
}

func (r unitRepo) setStatus(ids []uuid.UUID, status value.UnitStatus, dealID uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if u, ok := r.s.units[id]; ok {
			u.Status = status
			u.DealID = dealID
		}
	}
}

func (r unitRepo) MarkOnDeal(_ context.Context, ids []uuid.UUID, dealID uuid.UUID) error {
	r.setStatus(ids, value.UnitStatusOnDeal, dealID)
	return nil
}

func (r unitRepo) MarkAvailable(_ context.Context, ids []uuid.UUID) error {
	r.setStatus(ids, value.UnitStatusAvailable, uuid.Nil)
	return nil
}

func (r unitRepo) MarkSold(_ context.Context, ids []uuid.UUID) error {
	r.setStatus(ids, value.UnitStatusSold, uuid.Nil)
	return nil
}

func (r unitRepo) Delete(_ context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.s.units[id]; ok {
			delete(r.s.units, id)
			r.s.deleted = append(r.s.deleted, id)
		}
	}

	return nil
}

type exclusionRepo struct{ s *store }

func (r exclusionRepo) InsertMany(_ context.Context, entries []entity.ExclusionEntry) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	added := 0
	for _, e := range entries {
		if _, ok := r.s.exclusions[e.CertificateNumber]; ok {
			continue
		}
		r.s.exclusions[e.CertificateNumber] = e
		added++
	}

	return added, nil
}

type sequenceRepo struct{ s *store }

func (r sequenceRepo) Next(_ context.Context, name string, start int64, width int) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.sequences[name]
	if !ok {
		v = start - 1
	}
	v++
	r.s.sequences[name] = v

	return fmt.Sprintf("%0*d", width, v), nil
}

type companyRepo struct{ s *store }

func (r companyRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[id]
	if !ok {
		return nil, domain.NewError(errcodes.CompanyNotFound, "company not found")
	}

	return c, nil
}

func (r companyRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entity.Company
	for _, id := range ids {
		if c, ok := r.s.companies[id]; ok {
			result = append(result, c)
		}
	}

	return result, nil
}

func (r companyRepo) GetByName(_ context.Context, name string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.companies {
		if c.Name == name {
			return c, nil
		}
	}

	return nil, domain.NewError(errcodes.CompanyNotFound, "company not found")
}

func (r companyRepo) ListRepresentatives(_ context.Context, companyID uuid.UUID) ([]entity.Representative, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return append([]entity.Representative(nil), r.s.reps[companyID]...), nil
}

type cartRepo struct{ s *store }

func (r cartRepo) GetItems(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []entity.CartItem
	for _, id := range ids {
		if item, ok := r.s.cart[id]; ok && item.UserID == userID {
			result = append(result, item)
		}
	}

	return result, nil
}

func (r cartRepo) RemoveItems(_ context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if item, ok := r.s.cart[id]; ok && item.UserID == userID {
			delete(r.s.cart, id)
		}
	}

	return nil
}

type notifier struct{ s *store }

func (n notifier) Notify(_ context.Context, event entity.DealEvent) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	n.s.events = append(n.s.events, event)

	return nil
}

// flakyUnitRepo не может загрузить единицы товара.
type flakyUnitRepo struct {
	unitRepo
	err error
}

func (r flakyUnitRepo) GetByIDs(context.Context, []uuid.UUID) ([]*entity.Unit, error) {
	return nil, r.err
}

// flakyDealRepo не может загрузить сделку с идентификатором failID.
type flakyDealRepo struct {
	dealRepo
	failID uuid.UUID
	err    error
}

func (r flakyDealRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	if r.err != nil && id == r.failID {
		return nil, r.err
	}

	return r.dealRepo.GetByID(ctx, id)
}

func (s *store) serviceWith(deals deal.DealRepository, units deal.UnitRepository) *deal.Service {
	return deal.NewService(
		deals, units, exclusionRepo{s}, sequenceRepo{s}, companyRepo{s}, cartRepo{s},
	).
		WithNotifier(notifier{s}).
		WithClock(func() time.Time { return fixedNow })
}
