package deal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/role"
	"gem_market/internal/domain/service/transition"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

type side int

const (
	sideBuyer side = iota
	sideSeller
)

// paymentStep шаг стадии оплаты и доставки.
type paymentStep struct {
	name   string
	side   side
	from   value.Status
	to     value.Status
	action value.ActivityAction
	apply  func(deal *entity.Deal) string
}

// step проверяет роль и переход, применяет изменения и сохраняет сделку.
func (s *Service) step(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	st paymentStep,
) (entity.DealView, error) {
	deal, r, err := s.loadForRole(ctx, identity, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if !allowedSide(r, st.side) {
		return entity.DealView{}, domain.NewError(errcodes.Forbidden,
			fmt.Sprintf("role %s cannot %s", r, st.name))
	}

	if deal.Stage != value.StagePaymentDelivery || deal.Status != st.from {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("cannot %s when deal is %s/%s", st.name, deal.Stage, deal.Status))
	}

	if !transition.IsValidMove(deal.Stage, deal.Stage, deal.Status, st.to) {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("invalid status transition from %s to %s", deal.Status, st.to))
	}

	details := st.apply(deal)
	deal.Status = st.to
	deal.Log(s.now(), st.action, identity.UserID, details)

	if err := s.save(ctx, deal); err != nil {
		return entity.DealView{}, err
	}

	s.notify(ctx, value.EventStageChanged, deal, details)

	logger(ctx).Info("payment step applied",
		slog.String("step", st.name),
		slog.String(logx.FieldStatus, deal.Status.String()),
	)

	return role.View(deal, identity), nil
}

func allowedSide(r value.Role, sd side) bool {
	if sd == sideBuyer {
		return r.IsBuyerSide()
	}

	return r.IsSellerSide()
}

// UploadInvoice фиксирует имя загруженного счёта, сам файл хранится снаружи.
func (s *Service) UploadInvoice(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	fileName string,
) (entity.DealView, error) {
	if fileName == "" {
		return entity.DealView{}, domain.NewError(errcodes.ValidationError, "invoice file name is required")
	}

	return s.step(ctx, identity, dealID, paymentStep{
		name:   "upload invoice",
		side:   sideSeller,
		from:   value.StatusAwaitingInvoice,
		to:     value.StatusInvoicePending,
		action: value.ActivityInvoiceUploaded,
		apply: func(deal *entity.Deal) string {
			now := s.now()
			deal.Payment.InvoiceFile = fileName
			deal.Payment.InvoiceUploadedAt = &now
			deal.Payment.InvoiceAccepted = false
			deal.Payment.InvoiceRejection = ""

			return "Invoice uploaded: " + fileName
		},
	})
}

// ReviewInvoice принимает или отклоняет счёт. При отклонении сделка
// возвращается к ожиданию счёта.
func (s *Service) ReviewInvoice(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	accept bool,
	reason string,
) (entity.DealView, error) {
	to := value.StatusAwaitingPayment
	if !accept {
		to = value.StatusAwaitingInvoice
	}

	return s.step(ctx, identity, dealID, paymentStep{
		name:   "review invoice",
		side:   sideBuyer,
		from:   value.StatusInvoicePending,
		to:     to,
		action: value.ActivityInvoiceReviewed,
		apply: func(deal *entity.Deal) string {
			deal.Payment.InvoiceAccepted = accept
			if accept {
				deal.Payment.InvoiceRejection = ""
				return "Invoice accepted"
			}

			deal.Payment.InvoiceRejection = reason

			return "Invoice rejected: " + reason
		},
	})
}

func (s *Service) ConfirmPayment(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	reference string,
) (entity.DealView, error) {
	return s.step(ctx, identity, dealID, paymentStep{
		name:   "confirm payment",
		side:   sideSeller,
		from:   value.StatusAwaitingPayment,
		to:     value.StatusPaymentReceived,
		action: value.ActivityPaymentConfirmed,
		apply: func(deal *entity.Deal) string {
			now := s.now()
			deal.Payment.PaymentReference = reference
			deal.Payment.PaidAt = &now

			if reference == "" {
				return "Payment received"
			}

			return "Payment received, reference " + reference
		},
	})
}

func (s *Service) AddTracking(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
	trackingNumber, carrier string,
) (entity.DealView, error) {
	if trackingNumber == "" {
		return entity.DealView{}, domain.NewError(errcodes.ValidationError, "tracking number is required")
	}

	return s.step(ctx, identity, dealID, paymentStep{
		name:   "add tracking",
		side:   sideSeller,
		from:   value.StatusPaymentReceived,
		to:     value.StatusShipped,
		action: value.ActivityTrackingAdded,
		apply: func(deal *entity.Deal) string {
			now := s.now()
			deal.Shipping.TrackingNumber = trackingNumber
			deal.Shipping.Carrier = carrier
			deal.Shipping.ShippedAt = &now

			return fmt.Sprintf("Shipped via %s, tracking %s", carrier, trackingNumber)
		},
	})
}

// ConfirmDelivery подтверждает получение и завершает сделку. Доступно
// покупателю и посреднику в роли покупателя.
func (s *Service) ConfirmDelivery(
	ctx context.Context,
	identity entity.Identity,
	dealID uuid.UUID,
) (entity.DealView, error) {
	deal, r, err := s.loadForRole(ctx, identity, dealID)
	if err != nil {
		return entity.DealView{}, err
	}

	ctx = withDealLogger(ctx, deal)

	if !r.IsBuyerSide() {
		return entity.DealView{}, domain.NewError(errcodes.Forbidden,
			"only the buyer can confirm delivery")
	}

	if !transition.IsValidMove(deal.Stage, value.StageCompleted, deal.Status, value.StatusCompleted) {
		return entity.DealView{}, domain.NewError(errcodes.InvalidStatusTransition,
			fmt.Sprintf("cannot confirm delivery when deal is %s/%s", deal.Stage, deal.Status))
	}

	now := s.now()
	deal.Shipping.DeliveredAt = &now
	deal.Shipping.DeliveryConfirmedBy = identity.UserID
	deal.Log(now, value.ActivityDeliveryConfirmed, identity.UserID, "Delivery confirmed by "+r.String())

	if err := s.complete(ctx, identity.UserID, deal, "Deal completed after delivery confirmation"); err != nil {
		return entity.DealView{}, err
	}

	return role.View(deal, identity), nil
}
