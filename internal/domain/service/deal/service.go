// Package deal реализует жизненный цикл парных сделок: оформление,
// переговоры, замену товара, оплату с доставкой и завершение.
package deal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/role"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

const (
	representativeCacheTTL = 10 * time.Minute
	companyCacheTTL        = 10 * time.Minute

	buyerCounter  = "buyerDealNumber"
	sellerCounter = "sellerDealNumber"
)

type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	Update(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Deal, error)
	GetByNumber(ctx context.Context, number string) (*entity.Deal, error)
	List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error)
}

type UnitRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Unit, error)
	FindAlternatives(ctx context.Context, query entity.AlternativeQuery) ([]*entity.Unit, error)
	MarkOnDeal(ctx context.Context, ids []uuid.UUID, dealID uuid.UUID) error
	MarkAvailable(ctx context.Context, ids []uuid.UUID) error
	MarkSold(ctx context.Context, ids []uuid.UUID) error
	Delete(ctx context.Context, ids []uuid.UUID) error
}

type ExclusionRepository interface {
	// InsertMany пропускает уже исключённые сертификаты и возвращает число добавленных.
	InsertMany(ctx context.Context, entries []entity.ExclusionEntry) (int, error)
}

type SequenceRepository interface {
	Next(ctx context.Context, name string, start int64, width int) (string, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Company, error)
	GetByName(ctx context.Context, name string) (*entity.Company, error)
	ListRepresentatives(ctx context.Context, companyID uuid.UUID) ([]entity.Representative, error)
}

type CartRepository interface {
	GetItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]entity.CartItem, error)
	RemoveItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) error
}

type Notifier interface {
	Notify(ctx context.Context, event entity.DealEvent) error
}

type Recorder interface {
	DealInitiated()
	DealTransition(dealType value.DealType, stage value.Stage)
	SideEffectFailure(kind string)
}

// Settings параметры площадки.
type Settings struct {
	ManagementCompany     string
	SellerFeeRate         decimal.Decimal
	BuyerDiscountCap      decimal.Decimal
	PrivilegedDiscountCap decimal.Decimal
	AlternativesLimit     int
	CaratTolerance        decimal.Decimal
	DefaultShippingCost   decimal.Decimal
	InternalShippingCost  decimal.Decimal
	BuyerCounterStart     int64
	SellerCounterStart    int64
	CounterDigits         int
}

func DefaultSettings() Settings {
	return Settings{
		ManagementCompany:     "LGDEAL LLC",
		SellerFeeRate:         decimal.RequireFromString("0.04"),
		BuyerDiscountCap:      decimal.NewFromInt(20),
		PrivilegedDiscountCap: decimal.NewFromInt(30),
		AlternativesLimit:     3,
		CaratTolerance:        decimal.RequireFromString("0.03"),
		DefaultShippingCost:   decimal.NewFromInt(30),
		InternalShippingCost:  decimal.NewFromInt(15),
		BuyerCounterStart:     1,
		SellerCounterStart:    100001,
		CounterDigits:         6,
	}
}

type Service struct {
	deals      DealRepository
	units      UnitRepository
	exclusions ExclusionRepository
	sequences  SequenceRepository
	companies  CompanyRepository
	carts      CartRepository

	notifier Notifier
	recorder Recorder
	settings Settings
	now      func() time.Time

	// представители продавцов и компании меняются редко
	cache *cache.Cache
}

func NewService(
	deals DealRepository,
	units UnitRepository,
	exclusions ExclusionRepository,
	sequences SequenceRepository,
	companies CompanyRepository,
	carts CartRepository,
) *Service {
	return &Service{
		deals:      deals,
		units:      units,
		exclusions: exclusions,
		sequences:  sequences,
		companies:  companies,
		carts:      carts,
		notifier:   nopNotifier{},
		recorder:   nopRecorder{},
		settings:   DefaultSettings(),
		now:        time.Now,
		cache:      cache.New(representativeCacheTTL, 2*representativeCacheTTL),
	}
}

func (s *Service) WithSettings(settings Settings) *Service {
	s.settings = settings
	return s
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	s.notifier = notifier
	return s
}

func (s *Service) WithRecorder(recorder Recorder) *Service {
	s.recorder = recorder
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Settings() Settings {
	return s.settings
}

// GetByNumber сделка по номеру без проверки доступа, для служебных каналов.
func (s *Service) GetByNumber(ctx context.Context, number string) (*entity.Deal, error) {
	deal, err := s.deals.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("deals.GetByNumber: %w", err)
	}

	return deal, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	deal, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deals.GetByID: %w", err)
	}

	return deal, nil
}

// loadForRole загружает сделку и отказывает пользователю без роли в ней.
func (s *Service) loadForRole(
	ctx context.Context,
	identity entity.Identity,
	id uuid.UUID,
) (*entity.Deal, value.Role, error) {
	deal, err := s.load(ctx, id)
	if err != nil {
		return nil, value.RoleNone, err
	}

	r := role.ForIdentity(deal, identity)
	if r == value.RoleNone {
		return nil, value.RoleNone, domain.NewError(errcodes.Forbidden, "not authorized to act on this deal")
	}

	return deal, r, nil
}

func (s *Service) save(ctx context.Context, deal *entity.Deal) error {
	if err := s.deals.Update(ctx, deal); err != nil {
		return fmt.Errorf("deals.Update: %w", err)
	}

	return nil
}

// notify отправляет событие, ошибки доставки не мешают сделке.
func (s *Service) notify(ctx context.Context, kind value.EventKind, deal *entity.Deal, details string) {
	event := entity.NewDealEvent(kind, deal, details, s.now())

	if err := s.notifier.Notify(ctx, event); err != nil {
		s.recorder.SideEffectFailure("notification")
		logger(ctx).Warn("deal notification failed",
			slog.String(logx.FieldDealNumber, deal.Number),
			slog.String("event", string(kind)),
			logx.Error(err),
		)
	}
}

func (s *Service) company(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	key := "company:" + id.String()
	if cached, ok := s.cache.Get(key); ok {
		if company, ok := cached.(*entity.Company); ok {
			return company, nil
		}
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("companies.GetByID: %w", err)
	}

	s.cache.Set(key, company, companyCacheTTL)

	return company, nil
}

func (s *Service) managementCompany(ctx context.Context) (*entity.Company, error) {
	key := "management:" + s.settings.ManagementCompany
	if cached, ok := s.cache.Get(key); ok {
		if company, ok := cached.(*entity.Company); ok {
			return company, nil
		}
	}

	company, err := s.companies.GetByName(ctx, s.settings.ManagementCompany)
	if err != nil {
		if domain.HasCode(err, errcodes.CompanyNotFound) {
			return nil, domain.WrapError(err, errcodes.ManagementCompanyMissing,
				fmt.Sprintf("management company %q not found", s.settings.ManagementCompany))
		}
		return nil, fmt.Errorf("companies.GetByName: %w", err)
	}

	s.cache.Set(key, company, companyCacheTTL)

	return company, nil
}

// representative выбирает продавца компании: супервизор, затем менеджер,
// затем любой активный сотрудник.
func (s *Service) representative(ctx context.Context, company *entity.Company) (entity.Representative, error) {
	key := "representative:" + company.ID.String()
	if cached, ok := s.cache.Get(key); ok {
		if rep, ok := cached.(entity.Representative); ok {
			return rep, nil
		}
	}

	members, err := s.companies.ListRepresentatives(ctx, company.ID)
	if err != nil {
		return entity.Representative{}, fmt.Errorf("companies.ListRepresentatives: %w", err)
	}

	rep, ok := pickRepresentative(members)
	if !ok {
		return entity.Representative{}, domain.NewError(errcodes.RepresentativeNotFound,
			fmt.Sprintf("no active seller found for company %s", company.Name))
	}

	s.cache.Set(key, rep, cache.DefaultExpiration)

	return rep, nil
}

func pickRepresentative(members []entity.Representative) (entity.Representative, bool) {
	for _, want := range []value.MemberRole{value.MemberRoleSupervisor, value.MemberRoleManager} {
		for _, m := range members {
			if m.Role == want {
				return m, true
			}
		}
	}

	for _, m := range members {
		if m.Active {
			return m, true
		}
	}

	return entity.Representative{}, false
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, entity.DealEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) DealInitiated()                             {}
func (nopRecorder) DealTransition(value.DealType, value.Stage) {}
func (nopRecorder) SideEffectFailure(string)                   {}
