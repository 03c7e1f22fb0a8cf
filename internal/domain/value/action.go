package value

// Action действие, которое интерфейс может предложить участнику.
type Action string

const (
	ActionApproveRequest    Action = "approve_request"
	ActionRejectRequest     Action = "reject_request"
	ActionCancelDeal        Action = "cancel_deal"
	ActionSubmitProposal    Action = "submit_proposal"
	ActionCounterOffer      Action = "counter_offer"
	ActionAcceptTerms       Action = "accept_terms"
	ActionMoveToPayment     Action = "move_to_payment"
	ActionRejectNegotiation Action = "reject_negotiation"
	ActionUploadInvoice     Action = "upload_invoice"
	ActionAcceptInvoice     Action = "accept_invoice"
	ActionRejectInvoice     Action = "reject_invoice"
	ActionConfirmPayment    Action = "confirm_payment"
	ActionAddTracking       Action = "add_tracking"
	ActionConfirmDelivery   Action = "confirm_delivery"
)

// ActivityAction тип записи журнала сделки.
type ActivityAction string

const (
	ActivityDealCreated       ActivityAction = "deal_created"
	ActivityStageChanged      ActivityAction = "stage_changed"
	ActivityStatusChanged     ActivityAction = "status_changed"
	ActivityTermsProposed     ActivityAction = "terms_proposed"
	ActivityTermsAccepted     ActivityAction = "terms_accepted"
	ActivityShippingChanged   ActivityAction = "shipping_changed"
	ActivityInvoiceUploaded   ActivityAction = "invoice_uploaded"
	ActivityInvoiceReviewed   ActivityAction = "invoice_reviewed"
	ActivityPaymentConfirmed  ActivityAction = "payment_confirmed"
	ActivityTrackingAdded     ActivityAction = "tracking_added"
	ActivityDeliveryConfirmed ActivityAction = "delivery_confirmed"
	ActivityUnitSubstituted   ActivityAction = "unit_substituted"
	ActivityDealCompleted     ActivityAction = "deal_completed"
	ActivityDealCancelled     ActivityAction = "deal_cancelled"
	ActivityPairingRepaired   ActivityAction = "pairing_repaired"
)
