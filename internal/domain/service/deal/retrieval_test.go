package deal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

func initiated(rq *require.Assertions, m *market) deal.InitiateResult {
	unit := m.store.addUnit(m.seller, "GIA-1", 1000, attrs("1.00", "E"))
	m.store.addUnit(m.seller, "GIA-2", 990, attrs("1.01", "E"))

	res, err := m.svc.Initiate(context.Background(), m.buyer, deal.InitiateRequest{
		CartItemIDs: []uuid.UUID{m.store.addCartItem(m.buyer.UserID, unit.ID)},
	})
	rq.NoError(err)
	rq.Len(res.SellerDealIDs, 1)
	rq.Len(res.AlternativeDealIDs, 1)

	return res
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name     string
		identity func(m *market) entity.Identity
		forbid   bool
		role     value.Role
	}{
		{
			name:     "buyer",
			identity: func(m *market) entity.Identity { return m.buyer },
			role:     value.RoleBuyer,
		},
		{
			name: "buyer colleague",
			identity: func(m *market) entity.Identity {
				return entity.Identity{UserID: uuid.New(), CompanyID: m.buyerCompany.ID}
			},
			role: value.RoleNone,
		},
		{
			name:     "intermediary",
			identity: func(m *market) entity.Identity { return m.admin },
			role:     value.RoleIntermediarySeller,
		},
		{
			name: "stranger",
			identity: func(*market) entity.Identity {
				return entity.Identity{UserID: uuid.New(), CompanyID: uuid.New()}
			},
			forbid: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			m := newMarket()
			res := initiated(rq, m)

			view, err := m.svc.Get(context.Background(), tc.identity(m), res.BuyerDeal.Deal.ID)
			if tc.forbid {
				requireCode(rq, err, errcodes.Forbidden)
				return
			}

			rq.NoError(err)
			rq.Equal(tc.role, view.UserRole)
			if tc.role == value.RoleNone {
				rq.Empty(view.AllowedActions)
			}
		})
	}
}

func TestListDeals(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	m := newMarket()
	res := initiated(rq, m)

	bought, err := m.svc.ListBuyerDeals(ctx, m.buyer, deal.Page{})
	rq.NoError(err)
	rq.Len(bought, 1)
	rq.Equal(res.BuyerDeal.Deal.ID, bought[0].Deal.ID)

	purchases, err := m.svc.ListBuyerDeals(ctx, m.admin, deal.Page{})
	rq.NoError(err)
	rq.Len(purchases, 2)
	rq.True(lo.EveryBy(purchases, func(v entity.DealView) bool {
		return v.UserRole == value.RoleIntermediaryBuyer
	}))

	sales, err := m.svc.ListSellerDeals(ctx, m.sellerIdentity(), deal.Page{})
	rq.NoError(err)
	rq.Len(sales, 2)

	colleague := entity.Identity{UserID: uuid.New(), CompanyID: m.seller.ID}
	sales, err = m.svc.ListSellerDeals(ctx, colleague, deal.Page{})
	rq.NoError(err)
	rq.Len(sales, 2)

	customerSales, err := m.svc.ListSellerDeals(ctx, m.admin, deal.Page{})
	rq.NoError(err)
	rq.Len(customerSales, 1)
	rq.Equal(value.DealTypeBuyerToIntermediary, customerSales[0].Deal.Type)
}

func TestDashboard(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	m := newMarket()
	res := initiated(rq, m)

	unit := m.store.addUnit(m.seller, "GIA-3", 700, attrs("0.70", "G"))
	standalone := m.store.putDeal(m.sellerDeal(nil, "100009a", value.StageRequest, value.StatusPending, unit))

	_, err := m.svc.Dashboard(ctx, m.buyer, deal.Page{})
	requireCode(rq, err, errcodes.Forbidden)

	entries, err := m.svc.Dashboard(ctx, m.admin, deal.Page{})
	rq.NoError(err)
	rq.Len(entries, 4)

	byID := lo.KeyBy(entries, func(e entity.DashboardEntry) uuid.UUID { return e.Deal.ID })

	sale := byID[res.BuyerDeal.Deal.ID]
	rq.Equal(value.DashboardMainCustomerSale, sale.Kind)
	rq.Equal("Buyer Co", sale.CounterpartyName)

	primary := byID[res.SellerDealIDs[0]]
	rq.Equal(value.DashboardPrimarySupplierPurchase, primary.Kind)
	rq.Equal("Stone House", primary.CounterpartyName)
	rq.Equal(res.BuyerDeal.Deal.Number, primary.LinkedDealNumber)

	alternative := byID[res.AlternativeDealIDs[0]]
	rq.Equal(value.DashboardAlternativeSupplierPurchase, alternative.Kind)
	rq.Equal(res.BuyerDeal.Deal.Number, alternative.LinkedDealNumber)

	rq.Equal(value.DashboardStandaloneSupplierPurchase, byID[standalone.ID].Kind)
	rq.Empty(byID[standalone.ID].LinkedDealNumber)
}
