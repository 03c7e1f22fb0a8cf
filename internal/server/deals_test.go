package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
	"gem_market/internal/server"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/rest"
	"gem_market/pkg/tests"
)

type engine struct {
	err error

	identity entity.Identity
	propose  deal.ProposeRequest
	change   deal.ChangeStageRequest
	accepted uuid.UUID
	page     deal.Page
	view     entity.DealView
}

func (e *engine) result(identity entity.Identity) (entity.DealView, error) {
	e.identity = identity
	return e.view, e.err
}

func (e *engine) Initiate(_ context.Context, identity entity.Identity, _ deal.InitiateRequest) (deal.InitiateResult, error) {
	view, err := e.result(identity)
	return deal.InitiateResult{BuyerDeal: view, SellerDealIDs: []uuid.UUID{uuid.New()}}, err
}

func (e *engine) Get(_ context.Context, identity entity.Identity, _ uuid.UUID) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) ListBuyerDeals(_ context.Context, identity entity.Identity, page deal.Page) ([]entity.DealView, error) {
	e.page = page
	view, err := e.result(identity)
	return []entity.DealView{view}, err
}

func (e *engine) ListSellerDeals(_ context.Context, identity entity.Identity, page deal.Page) ([]entity.DealView, error) {
	e.page = page
	view, err := e.result(identity)
	return []entity.DealView{view}, err
}

func (e *engine) Dashboard(_ context.Context, identity entity.Identity, _ deal.Page) ([]entity.DashboardEntry, error) {
	view, err := e.result(identity)
	return []entity.DashboardEntry{{Deal: view.Deal, Kind: value.DashboardMainCustomerSale}}, err
}

func (e *engine) Propose(_ context.Context, identity entity.Identity, _ uuid.UUID, req deal.ProposeRequest) (entity.DealView, error) {
	e.propose = req
	return e.result(identity)
}

func (e *engine) Accept(_ context.Context, identity entity.Identity, _, proposalID uuid.UUID) (entity.DealView, error) {
	e.accepted = proposalID
	return e.result(identity)
}

func (e *engine) ChangeStage(_ context.Context, identity entity.Identity, _ uuid.UUID, req deal.ChangeStageRequest) (entity.DealView, error) {
	e.change = req
	return e.result(identity)
}

func (e *engine) SelectAlternative(_ context.Context, identity entity.Identity, _ uuid.UUID, _ deal.SelectAlternativeRequest) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) UploadInvoice(_ context.Context, identity entity.Identity, _ uuid.UUID, _ string) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) ReviewInvoice(_ context.Context, identity entity.Identity, _ uuid.UUID, _ bool, _ string) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) ConfirmPayment(_ context.Context, identity entity.Identity, _ uuid.UUID, _ string) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) AddTracking(_ context.Context, identity entity.Identity, _ uuid.UUID, _, _ string) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) ConfirmDelivery(_ context.Context, identity entity.Identity, _ uuid.UUID) (entity.DealView, error) {
	return e.result(identity)
}

func (e *engine) VerifyPairingIntegrity(_ context.Context, id uuid.UUID) (entity.PairingReport, error) {
	return entity.PairingReport{BuyerDealID: id}, e.err
}

func (e *engine) ReconcilePairing(_ context.Context, id uuid.UUID) (entity.PairingReport, error) {
	return entity.PairingReport{BuyerDealID: id}, e.err
}

func newTestServer(t *testing.T, e *engine) tests.APIClient {
	t.Helper()

	r := chi.NewRouter()
	server.NewServer(server.NewDealServer(e)).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return tests.NewAPIClient(srv.URL, srv.Client())
}

func sampleView() entity.DealView {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return entity.DealView{
		Deal: &entity.Deal{
			ID:     uuid.New(),
			Number: "000042",
			Type:   value.DealTypeBuyerToIntermediary,
			Stage:  value.StageNegotiation,
			Status: value.StatusTermsProposed,
			Items: []entity.LineItem{{
				UnitID: uuid.New(),
				Price:  decimal.NewFromInt(1000),
			}},
			Amount:    decimal.NewFromInt(1000),
			CreatedAt: created,
		},
		UserRole:       value.RoleBuyer,
		AllowedActions: []value.Action{value.ActionAcceptTerms, value.ActionCancelDeal},
		CanEdit:        true,
	}
}

func headers(privileged bool) http.Header {
	return tests.IdentityHeaders(uuid.New(), uuid.New(), privileged)
}

func TestGetDeal(t *testing.T) {
	rq := require.New(t)
	e := &engine{view: sampleView()}
	api := newTestServer(t, e)

	h := headers(false)
	var got rest.DealView
	resp, err := api.Get(context.Background(), "/v1/deals/"+e.view.Deal.ID.String(), h, &got, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("000042", got.Deal.Number)
	rq.Equal("buyer", got.UserRole)
	rq.Equal([]string{"accept_terms", "cancel_deal"}, got.AllowedActions)
	rq.True(decimal.NewFromInt(1000).Equal(got.Deal.Amount))
	rq.Equal(h.Get(tests.HeaderUserID), e.identity.UserID.String())
	rq.False(e.identity.Privileged)
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		path     string
		header   http.Header
		wantCode int
		wantErr  string
	}{
		{
			name:     "no identity",
			path:     "/v1/deals/" + uuid.NewString(),
			header:   http.Header{},
			wantCode: http.StatusUnauthorized,
			wantErr:  string(errcodes.Unauthorized),
		},
		{
			name:     "bad deal id",
			path:     "/v1/deals/not-a-uuid",
			header:   headers(false),
			wantCode: http.StatusBadRequest,
			wantErr:  string(errcodes.InvalidDealID),
		},
		{
			name:     "not found",
			err:      domain.NewError(errcodes.DealNotFound, "deal not found"),
			path:     "/v1/deals/" + uuid.NewString(),
			header:   headers(false),
			wantCode: http.StatusNotFound,
			wantErr:  string(errcodes.DealNotFound),
		},
		{
			name:     "forbidden",
			err:      domain.NewError(errcodes.Forbidden, "no access"),
			path:     "/v1/deals/" + uuid.NewString(),
			header:   headers(false),
			wantCode: http.StatusForbidden,
			wantErr:  string(errcodes.Forbidden),
		},
		{
			name:     "dependency failure",
			err:      domain.NewError(errcodes.ManagementCompanyMissing, "no management company"),
			path:     "/v1/deals/" + uuid.NewString(),
			header:   headers(false),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  string(errcodes.ManagementCompanyMissing),
		},
		{
			name:     "pairing requires privilege",
			path:     "/v1/deals/" + uuid.NewString() + "/pairing",
			header:   headers(false),
			wantCode: http.StatusForbidden,
			wantErr:  string(errcodes.Forbidden),
		},
		{
			name:     "bad paging",
			path:     "/v1/deals/buying?limit=-1",
			header:   headers(false),
			wantCode: http.StatusBadRequest,
			wantErr:  string(errcodes.InvalidPaging),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			e := &engine{view: sampleView(), err: tc.err}
			api := newTestServer(t, e)

			var apiErr rest.Error
			resp, err := api.Get(context.Background(), tc.path, tc.header, nil, &apiErr)
			rq.NoError(err)
			rq.Equal(tc.wantCode, resp.StatusCode)
			rq.Equal(tc.wantErr, string(apiErr.Code))
		})
	}
}

func TestDealActions(t *testing.T) {
	rq := require.New(t)
	e := &engine{view: sampleView()}
	api := newTestServer(t, e)
	ctx := context.Background()
	base := "/v1/deals/" + e.view.Deal.ID.String()

	shipping := decimal.NewFromInt(25)
	resp, err := api.Post(ctx, base+"/proposals", headers(false), rest.ProposeTermsRequest{
		Price:        decimal.NewFromInt(850),
		ShippingCost: &shipping,
	}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(e.propose.Price.Equal(decimal.NewFromInt(850)))
	rq.True(e.propose.ShippingCost.Valid)

	proposalID := uuid.New()
	resp, err = api.Post(ctx, base+"/accept", headers(false), rest.AcceptTermsRequest{ProposalID: proposalID.String()}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(proposalID, e.accepted)

	resp, err = api.Post(ctx, base+"/stage", headers(true), rest.ChangeStageRequest{
		Stage:  "payment_delivery",
		Status: "awaiting_invoice",
	}, nil, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(value.StagePaymentDelivery, e.change.Stage)
	rq.Equal(value.StatusAwaitingInvoice, e.change.Status)
	rq.True(e.identity.Privileged)

	var apiErr rest.Error
	resp, err = api.Post(ctx, base+"/stage", headers(true), rest.ChangeStageRequest{Stage: "archived"}, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(string(errcodes.ValidationError), string(apiErr.Code))

	resp, err = api.Post(ctx, base+"/tracking", headers(false), rest.AddTrackingRequest{}, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)

	apiErr = rest.Error{}
	resp, err = api.PostJSON(ctx, base+"/tracking", headers(false), `{"trackingNumber":`, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(string(errcodes.ValidationError), string(apiErr.Code))

	e.err = domain.NewError(errcodes.InvalidStatusTransition, "cannot move")
	resp, err = api.Post(ctx, base+"/delivery", headers(false), struct{}{}, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusConflict, resp.StatusCode)
	rq.Equal(string(errcodes.InvalidStatusTransition), string(apiErr.Code))

	e.err = domain.NewError(errcodes.DiscountExceeded, "too much")
	resp, err = api.Post(ctx, base+"/proposals", headers(false), rest.ProposeTermsRequest{Price: decimal.NewFromInt(1)}, nil, &apiErr)
	rq.NoError(err)
	rq.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListsAndDashboard(t *testing.T) {
	rq := require.New(t)
	e := &engine{view: sampleView()}
	api := newTestServer(t, e)
	ctx := context.Background()

	var list rest.DealList
	resp, err := api.Get(ctx, "/v1/deals/selling?limit=10&offset=20", headers(false), &list, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(list.Deals, 1)
	rq.Equal(deal.Page{Limit: 10, Offset: 20}, e.page)

	var dashboard rest.Dashboard
	resp, err = api.Get(ctx, "/v1/deals/dashboard", headers(true), &dashboard, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(dashboard.Entries, 1)
	rq.Equal("mainCustomerSale", dashboard.Entries[0].Classification)

	var report rest.PairingReport
	id := uuid.New()
	resp, err = api.Post(ctx, "/v1/deals/"+id.String()+"/pairing/reconcile", headers(true), struct{}{}, &report, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(report.OK)
	rq.Equal(id.String(), report.BuyerDealID)
}
