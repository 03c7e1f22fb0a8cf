package deal_test

import (
	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
)

type market struct {
	store *store
	svc   *deal.Service

	management   *entity.Company
	seller       *entity.Company
	buyerCompany *entity.Company

	sellerUser uuid.UUID
	buyer      entity.Identity
	admin      entity.Identity
}

func newMarket() *market {
	st := newStore()

	m := &market{store: st}
	m.management = st.addCompany("LGDEAL LLC")
	m.seller = st.addCompany("Stone House")
	m.buyerCompany = st.addCompany("Buyer Co")

	st.addRep(m.seller, value.MemberRoleMember)
	m.sellerUser = st.addRep(m.seller, value.MemberRoleSupervisor)
	adminID := st.addRep(m.management, value.MemberRoleSupervisor)

	m.buyer = entity.Identity{UserID: uuid.New(), CompanyID: m.buyerCompany.ID}
	m.admin = entity.Identity{UserID: adminID, CompanyID: m.management.ID, Privileged: true}
	m.svc = st.service()

	return m
}

func (m *market) sellerIdentity() entity.Identity {
	return entity.Identity{UserID: m.sellerUser, CompanyID: m.seller.ID}
}

// buyerDeal сделка покупателя в заданном состоянии, по строке на каждую единицу.
func (m *market) buyerDeal(stage value.Stage, status value.Status, units ...*entity.Unit) *entity.Deal {
	d := &entity.Deal{
		ID:                    uuid.New(),
		Number:                "000042",
		Type:                  value.DealTypeBuyerToIntermediary,
		Stage:                 stage,
		Status:                status,
		BuyerID:               m.buyer.UserID,
		BuyerCompanyID:        m.buyerCompany.ID,
		SellerCompanyID:       m.management.ID,
		IntermediaryCompanyID: m.management.ID,
		Shipping:              entity.ShippingDetails{Cost: decimal.NewFromInt(30)},
		CreatedAt:             fixedNow,
	}
	for _, u := range units {
		d.Items = append(d.Items, entity.LineItem{UnitID: u.ID, Price: u.Price})
	}
	d.RecalculateAmount()

	return d
}

// sellerDeal сделка посредника с продавцом, привязанная к parent.
func (m *market) sellerDeal(
	parent *entity.Deal,
	number string,
	stage value.Stage,
	status value.Status,
	units ...*entity.Unit,
) *entity.Deal {
	d := &entity.Deal{
		ID:                    uuid.New(),
		Number:                number,
		Type:                  value.DealTypeIntermediaryToSeller,
		Stage:                 stage,
		Status:                status,
		BuyerCompanyID:        m.management.ID,
		SellerID:              m.sellerUser,
		SellerCompanyID:       m.seller.ID,
		IntermediaryCompanyID: m.management.ID,
		Shipping:              entity.ShippingDetails{Cost: decimal.NewFromInt(30)},
		CreatedAt:             fixedNow,
	}
	if parent != nil {
		d.PairedDealID = parent.ID
	}
	for _, u := range units {
		d.Items = append(d.Items, entity.LineItem{UnitID: u.ID, Price: u.Price.Mul(decimal.RequireFromString("0.96"))})
	}
	d.RecalculateAmount()

	return d
}

func attrs(carat, color string) value.UnitAttributes {
	return value.UnitAttributes{
		Shape:   "Round",
		Carat:   decimal.RequireFromString(carat),
		Color:   color,
		Clarity: "VS1",
	}
}

func requireAmount(rq *require.Assertions, expected string, actual decimal.Decimal) {
	rq.Truef(decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func requireCode(rq *require.Assertions, err error, expected failure.ErrorCode) {
	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok, "expected domain error, got %v", err)
	rq.Equal(expected, code)
}
