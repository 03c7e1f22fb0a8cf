package value

// Status состояние сделки внутри стадии.
type Status string

const (
	StatusPending            Status = "pending"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusNegotiating        Status = "negotiating"
	StatusTermsProposed      Status = "terms_proposed"
	StatusSellerCounterOffer Status = "seller_counter_offer"
	StatusSellerFinalOffer   Status = "seller_final_offer"
	StatusAwaitingInvoice    Status = "awaiting_invoice"
	StatusInvoicePending     Status = "invoice_pending"
	StatusAwaitingPayment    Status = "awaiting_payment"
	StatusPaymentReceived    Status = "payment_received"
	StatusShipped            Status = "shipped"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

//nolint:gochecknoglobals
var statusesByStage = map[Stage][]Status{
	StageRequest:     {StatusPending, StatusApproved, StatusRejected},
	StageNegotiation: {StatusNegotiating, StatusTermsProposed, StatusSellerCounterOffer, StatusSellerFinalOffer},
	StagePaymentDelivery: {
		StatusAwaitingInvoice,
		StatusInvoicePending,
		StatusAwaitingPayment,
		StatusPaymentReceived,
		StatusShipped,
	},
	StageCompleted: {StatusCompleted},
	StageCancelled: {StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

// StatusesOf возвращает статусы, допустимые в стадии.
func StatusesOf(stage Stage) []Status {
	return append([]Status(nil), statusesByStage[stage]...)
}

// BelongsTo проверяет, что статус допустим в стадии.
func (s Status) BelongsTo(stage Stage) bool {
	for _, status := range statusesByStage[stage] {
		if status == s {
			return true
		}
	}

	return false
}

func (s Status) Valid() bool {
	for stage := range statusesByStage {
		if s.BelongsTo(stage) {
			return true
		}
	}

	return false
}

// DefaultStatus статус, в который попадает сделка при входе в стадию.
func DefaultStatus(stage Stage) Status {
	switch stage {
	case StageRequest:
		return StatusPending
	case StageNegotiation:
		return StatusNegotiating
	case StagePaymentDelivery:
		return StatusAwaitingInvoice
	case StageCompleted:
		return StatusCompleted
	case StageCancelled:
		return StatusCancelled
	default:
		return ""
	}
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", ErrUnknownStatus
	}

	return status, nil
}
