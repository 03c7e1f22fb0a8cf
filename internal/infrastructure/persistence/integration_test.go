package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/internal/infrastructure/persistence"
	"gem_market/pkg/dbtest"
)

// Требует базу в GEM_MARKET_TEST_DSN, таблицы очищаются после теста.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("GEM_MARKET_TEST_DSN")
	if dsn == "" {
		t.Skip("GEM_MARKET_TEST_DSN is not set")
	}

	rq := require.New(t)
	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	rq.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	rq.NoError(dbtest.Migrate(db, "../../../migrations"))
	t.Cleanup(func() {
		_ = dbtest.Truncate(db, "deals", "excluded_certificates", "cart_items", "units", "company_members", "companies", "sequences")
	})

	companyID := uuid.New()
	_, err = db.ExecContext(ctx, `INSERT INTO companies (id, name) VALUES ($1, $2)`, companyID, "Stone House "+companyID.String())
	rq.NoError(err)

	units := persistence.NewUnitRepository(db)
	unitID := uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO units (id, company_id, certificate_number, price, shape, carat, color, clarity)
		VALUES ($1, $2, $3, 1000, 'Round', 1.01, 'E', 'VS1')`, unitID, companyID, "IT-"+unitID.String())
	rq.NoError(err)

	found, err := units.FindAlternatives(ctx, entity.AlternativeQuery{
		Shape:    "Round",
		CaratMin: decimal.RequireFromString("0.95"),
		CaratMax: decimal.RequireFromString("1.05"),
		Clarity:  "VS1",
		Colors:   []string{"E", "D", "F"},
		Limit:    10,
	})
	rq.NoError(err)
	rq.Contains(unitIDs(found), unitID)

	exclusions := persistence.NewExclusionRepository(db)
	entry := entity.ExclusionEntry{
		CertificateNumber: "IT-" + unitID.String(),
		Reason:            value.ExclusionReasonProductSold,
		CreatedAt:         time.Now(),
	}
	added, err := exclusions.InsertMany(ctx, []entity.ExclusionEntry{entry, entry})
	rq.NoError(err)
	rq.Equal(1, added)

	found, err = units.FindAlternatives(ctx, entity.AlternativeQuery{
		Shape:    "Round",
		CaratMin: decimal.RequireFromString("0.95"),
		CaratMax: decimal.RequireFromString("1.05"),
		Clarity:  "VS1",
		Colors:   []string{"E"},
		Limit:    10,
	})
	rq.NoError(err)
	rq.NotContains(unitIDs(found), unitID)

	sequences := persistence.NewSequenceRepository(db)
	name := "it-" + unitID.String()
	first, err := sequences.Next(ctx, name, 100001, 6)
	rq.NoError(err)
	second, err := sequences.Next(ctx, name, 100001, 6)
	rq.NoError(err)
	rq.Equal("100001", first)
	rq.Equal("100002", second)

	deals := persistence.NewDealRepository(db)
	deal := &entity.Deal{
		ID:           uuid.New(),
		Number:       "it-" + unitID.String()[:8],
		Type:         value.DealTypeIntermediaryToSeller,
		Stage:        value.StageRequest,
		Status:       value.StatusPending,
		Items:        []entity.LineItem{{UnitID: unitID, Price: decimal.NewFromInt(960)}},
		Amount:       decimal.NewFromInt(960),
		Fee:          decimal.RequireFromString("38.40"),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		LastActionAt: time.Now().UTC().Truncate(time.Second),
	}
	rq.NoError(deals.Create(ctx, deal))

	deal.Stage, deal.Status = value.StageNegotiation, value.StatusNegotiating
	rq.NoError(deals.Update(ctx, deal))

	got, err := deals.GetByID(ctx, deal.ID)
	rq.NoError(err)
	rq.Equal(value.StageNegotiation, got.Stage)
	rq.True(deal.Fee.Equal(got.Fee))
	rq.Len(got.Items, 1)
}

func unitIDs(units []*entity.Unit) []uuid.UUID {
	return lo.Map(units, func(u *entity.Unit, _ int) uuid.UUID { return u.ID })
}
