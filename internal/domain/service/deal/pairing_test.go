package deal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
)

func TestReconcilePairing(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	m := newMarket()

	unit := m.store.addUnit(m.seller, "GIA-1", 1000, attrs("1.00", "E"))
	ghost := uuid.New()

	buyerDeal := m.buyerDeal(value.StageRequest, value.StatusPending, unit)
	backLinked := m.sellerDeal(buyerDeal, "100001a", value.StageRequest, value.StatusPending, unit)
	orphan := m.sellerDeal(nil, "100002b", value.StageRequest, value.StatusPending, unit)
	buyerDeal.PairedDealIDs = []uuid.UUID{ghost, orphan.ID}
	m.store.putDeal(buyerDeal)
	m.store.putDeal(backLinked)
	m.store.putDeal(orphan)

	report, err := m.svc.VerifyPairingIntegrity(ctx, buyerDeal.ID)
	rq.NoError(err)
	rq.False(report.OK())
	rq.Equal(buyerDeal.ID, report.BuyerDealID)
	rq.Equal([]uuid.UUID{backLinked.ID}, report.MissingBackLinks)
	rq.Equal([]uuid.UUID{ghost}, report.DanglingIDs)
	rq.Equal([]uuid.UUID{orphan.ID}, report.ForeignLinks)

	fromSeller, err := m.svc.VerifyPairingIntegrity(ctx, backLinked.ID)
	rq.NoError(err)
	rq.Equal(report, fromSeller)

	report, err = m.svc.ReconcilePairing(ctx, buyerDeal.ID)
	rq.NoError(err)
	rq.True(report.OK())

	repaired := m.store.deal(buyerDeal.ID)
	rq.ElementsMatch([]uuid.UUID{orphan.ID, backLinked.ID}, repaired.PairedDealIDs)
	rq.Equal(value.ActivityPairingRepaired, repaired.Activity[len(repaired.Activity)-1].Action)
	rq.Equal(buyerDeal.ID, m.store.deal(orphan.ID).PairedDealID)

	report, err = m.svc.ReconcilePairing(ctx, buyerDeal.ID)
	rq.NoError(err)
	rq.True(report.OK())
	rq.Len(m.store.deal(buyerDeal.ID).Activity, len(repaired.Activity))
}

func TestReconcilePairing_KeepsForeignOwner(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	m := newMarket()

	unit := m.store.addUnit(m.seller, "GIA-1", 1000, attrs("1.00", "E"))

	owner := m.buyerDeal(value.StageRequest, value.StatusPending, unit)
	intruder := m.buyerDeal(value.StageRequest, value.StatusPending, unit)
	intruder.ID = uuid.New()
	supplier := m.sellerDeal(owner, "100001a", value.StageRequest, value.StatusPending, unit)
	owner.PairedDealIDs = []uuid.UUID{supplier.ID}
	intruder.PairedDealIDs = []uuid.UUID{supplier.ID}
	m.store.putDeal(owner)
	m.store.putDeal(intruder)
	m.store.putDeal(supplier)

	report, err := m.svc.ReconcilePairing(ctx, intruder.ID)
	rq.NoError(err)
	rq.Equal([]uuid.UUID{supplier.ID}, report.ForeignLinks)
	rq.Equal(owner.ID, m.store.deal(supplier.ID).PairedDealID)
}

func TestOpenBuyerDealIDs(t *testing.T) {
	rq := require.New(t)
	m := newMarket()

	unit := m.store.addUnit(m.seller, "GIA-1", 1000, attrs("1.00", "E"))
	open := m.store.putDeal(m.buyerDeal(value.StageNegotiation, value.StatusNegotiating, unit))

	done := m.buyerDeal(value.StageCompleted, value.StatusCompleted, unit)
	done.Number = "000043"
	m.store.putDeal(done)
	m.store.putDeal(m.sellerDeal(open, "100001a", value.StageRequest, value.StatusPending, unit))

	ids, err := m.svc.OpenBuyerDealIDs(context.Background(), deal.Page{})
	rq.NoError(err)
	rq.Equal([]uuid.UUID{open.ID}, ids)
}

func TestReconcilePairing_OwnerLookup(t *testing.T) {
	testCases := []struct {
		name            string
		storeOwner      bool
		ownerErr        error
		expectedErr     bool
		expectedRelinks bool
	}{
		{
			name:            "owner deleted",
			storeOwner:      false,
			expectedRelinks: true,
		},
		{
			name:        "storage failure",
			storeOwner:  true,
			ownerErr:    errors.New("connection reset"),
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()
			m := newMarket()

			unit := m.store.addUnit(m.seller, "GIA-1", 1000, attrs("1.00", "E"))

			owner := m.buyerDeal(value.StageRequest, value.StatusPending, unit)
			intruder := m.buyerDeal(value.StageRequest, value.StatusPending, unit)
			intruder.ID = uuid.New()
			supplier := m.sellerDeal(owner, "100001a", value.StageRequest, value.StatusPending, unit)
			owner.PairedDealIDs = []uuid.UUID{supplier.ID}
			intruder.PairedDealIDs = []uuid.UUID{supplier.ID}
			if tc.storeOwner {
				m.store.putDeal(owner)
			}
			m.store.putDeal(intruder)
			m.store.putDeal(supplier)

			deals := flakyDealRepo{dealRepo: dealRepo{m.store}}
			if tc.ownerErr != nil {
				deals.failID = owner.ID
				deals.err = tc.ownerErr
			}
			svc := m.store.serviceWith(deals, unitRepo{m.store})

			report, err := svc.ReconcilePairing(ctx, intruder.ID)
			if tc.expectedErr {
				rq.ErrorIs(err, tc.ownerErr)
				rq.Equal(owner.ID, m.store.deal(supplier.ID).PairedDealID)
				return
			}

			rq.NoError(err)
			rq.True(report.OK())
			rq.Equal(intruder.ID, m.store.deal(supplier.ID).PairedDealID)
		})
	}
}
