package value

// Stage крупная фаза сделки.
type Stage string

const (
	StageRequest         Stage = "request"
	StageNegotiation     Stage = "negotiation"
	StagePaymentDelivery Stage = "payment_delivery"
	StageCompleted       Stage = "completed"
	StageCancelled       Stage = "cancelled"
)

// StageOrder фиксированный порядок стадий.
//
//nolint:gochecknoglobals
var StageOrder = []Stage{
	StageRequest,
	StageNegotiation,
	StagePaymentDelivery,
	StageCompleted,
	StageCancelled,
}

func (s Stage) String() string {
	return string(s)
}

// Index позиция стадии в StageOrder, -1 для неизвестной.
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}

	return -1
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled
}

func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.Valid() {
		return "", ErrUnknownStage
	}

	return stage, nil
}
