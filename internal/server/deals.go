package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/httpx/reply"
	"gem_market/pkg/httpx/req"
	"gem_market/pkg/rest"
)

type dealService interface {
	Initiate(ctx context.Context, identity entity.Identity, req deal.InitiateRequest) (deal.InitiateResult, error)
	Get(ctx context.Context, identity entity.Identity, dealID uuid.UUID) (entity.DealView, error)
	ListBuyerDeals(ctx context.Context, identity entity.Identity, page deal.Page) ([]entity.DealView, error)
	ListSellerDeals(ctx context.Context, identity entity.Identity, page deal.Page) ([]entity.DealView, error)
	Dashboard(ctx context.Context, identity entity.Identity, page deal.Page) ([]entity.DashboardEntry, error)
	Propose(ctx context.Context, identity entity.Identity, dealID uuid.UUID, req deal.ProposeRequest) (entity.DealView, error)
	Accept(ctx context.Context, identity entity.Identity, dealID, proposalID uuid.UUID) (entity.DealView, error)
	ChangeStage(ctx context.Context, identity entity.Identity, dealID uuid.UUID, req deal.ChangeStageRequest) (entity.DealView, error)
	SelectAlternative(ctx context.Context, identity entity.Identity, dealID uuid.UUID, req deal.SelectAlternativeRequest) (entity.DealView, error)
	UploadInvoice(ctx context.Context, identity entity.Identity, dealID uuid.UUID, fileName string) (entity.DealView, error)
	ReviewInvoice(ctx context.Context, identity entity.Identity, dealID uuid.UUID, accept bool, reason string) (entity.DealView, error)
	ConfirmPayment(ctx context.Context, identity entity.Identity, dealID uuid.UUID, reference string) (entity.DealView, error)
	AddTracking(ctx context.Context, identity entity.Identity, dealID uuid.UUID, trackingNumber, carrier string) (entity.DealView, error)
	ConfirmDelivery(ctx context.Context, identity entity.Identity, dealID uuid.UUID) (entity.DealView, error)
	VerifyPairingIntegrity(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
	ReconcilePairing(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
}

type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func dealID(r *http.Request) (uuid.UUID, error) {
	return parseID(chi.URLParam(r, "id"), errcodes.InvalidDealID)
}

func page(r *http.Request) (deal.Page, error) {
	var p deal.Page

	for name, dest := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return deal.Page{}, failure.NewInvalidArgumentError(
				fmt.Sprintf("%s=%q", name, raw),
				failure.WithCode(errcodes.InvalidPaging),
				failure.WithDescription("invalid "+name),
			)
		}
		*dest = v
	}

	return p, nil
}

func (s DealServer) postV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.InitiateDealRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	initiate, err := newDomainInitiate(request)
	if err != nil {
		return err
	}

	result, err := s.dealService.Initiate(ctx, identityFrom(ctx), initiate)
	if err != nil {
		return fmt.Errorf("dealService.Initiate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTInitiateResponse(result))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealID(r)
	if err != nil {
		return err
	}

	view, err := s.dealService.Get(ctx, identityFrom(ctx), id)
	if err != nil {
		return fmt.Errorf("dealService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDealView(view))

	return nil
}

func (s DealServer) listHandler(
	list func(context.Context, entity.Identity, deal.Page) ([]entity.DealView, error),
) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		p, err := page(r)
		if err != nil {
			return err
		}

		views, err := list(ctx, identityFrom(ctx), p)
		if err != nil {
			return fmt.Errorf("list deals: %w", err)
		}

		reply.JSON(ctx, w, http.StatusOK, newRESTDealList(views))

		return nil
	}
}

func (s DealServer) getV1Dashboard(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	p, err := page(r)
	if err != nil {
		return err
	}

	entries, err := s.dealService.Dashboard(ctx, identityFrom(ctx), p)
	if err != nil {
		return fmt.Errorf("dealService.Dashboard: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDashboard(entries))

	return nil
}

// dealAction общий каркас для POST /deals/{id}/...: читает тело, вызывает
// операцию и отдаёт обновлённую сделку.
func dealAction[T any](
	call func(ctx context.Context, identity entity.Identity, id uuid.UUID, body T) (entity.DealView, error),
) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		id, err := dealID(r)
		if err != nil {
			return err
		}

		var body T
		if err := req.ReadOptional(r, &body); err != nil {
			return fmt.Errorf("req.ReadOptional: %w", err)
		}

		view, err := call(ctx, identityFrom(ctx), id, body)
		if err != nil {
			return err
		}

		reply.JSON(ctx, w, http.StatusOK, newRESTDealView(view))

		return nil
	}
}

func (s DealServer) propose(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.ProposeTermsRequest) (entity.DealView, error) {
	return s.dealService.Propose(ctx, identity, id, newDomainPropose(body))
}

func (s DealServer) accept(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.AcceptTermsRequest) (entity.DealView, error) {
	proposalID, err := parseID(body.ProposalID, errcodes.ValidationError)
	if err != nil {
		return entity.DealView{}, err
	}

	return s.dealService.Accept(ctx, identity, id, proposalID)
}

func (s DealServer) changeStage(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.ChangeStageRequest) (entity.DealView, error) {
	change, err := newDomainChangeStage(body)
	if err != nil {
		return entity.DealView{}, err
	}

	return s.dealService.ChangeStage(ctx, identity, id, change)
}

func (s DealServer) selectAlternative(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.SelectAlternativeRequest) (entity.DealView, error) {
	selection, err := newDomainSelectAlternative(body)
	if err != nil {
		return entity.DealView{}, err
	}

	return s.dealService.SelectAlternative(ctx, identity, id, selection)
}

func (s DealServer) uploadInvoice(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.UploadInvoiceRequest) (entity.DealView, error) {
	return s.dealService.UploadInvoice(ctx, identity, id, body.FileName)
}

func (s DealServer) reviewInvoice(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.ReviewInvoiceRequest) (entity.DealView, error) {
	return s.dealService.ReviewInvoice(ctx, identity, id, body.Accept, body.Reason)
}

func (s DealServer) confirmPayment(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.ConfirmPaymentRequest) (entity.DealView, error) {
	return s.dealService.ConfirmPayment(ctx, identity, id, body.Reference)
}

func (s DealServer) addTracking(ctx context.Context, identity entity.Identity, id uuid.UUID, body rest.AddTrackingRequest) (entity.DealView, error) {
	return s.dealService.AddTracking(ctx, identity, id, body.TrackingNumber, body.Carrier)
}

func (s DealServer) confirmDelivery(ctx context.Context, identity entity.Identity, id uuid.UUID, _ struct{}) (entity.DealView, error) {
	return s.dealService.ConfirmDelivery(ctx, identity, id)
}

func (s DealServer) pairingHandler(
	check func(context.Context, uuid.UUID) (entity.PairingReport, error),
) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		if !identityFrom(ctx).Privileged {
			return forbidden()
		}

		id, err := dealID(r)
		if err != nil {
			return err
		}

		report, err := check(ctx, id)
		if err != nil {
			return fmt.Errorf("pairing: %w", err)
		}

		reply.JSON(ctx, w, http.StatusOK, newRESTPairingReport(report))

		return nil
	}
}
