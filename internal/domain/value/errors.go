package value

import "errors"

var (
	ErrUnknownStage    = errors.New("unknown stage")
	ErrUnknownStatus   = errors.New("unknown status")
	ErrUnknownDealType = errors.New("unknown deal type")
)
