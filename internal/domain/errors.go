package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"

	"gem_market/pkg/errcodes"
)

// AppError представляет доменную ошибку приложения.
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает обёрнутую ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.cause
}

// NewError создаёт новую доменную ошибку.
func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WrapError оборачивает существующую ошибку с доменным контекстом.
func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// IsAppError проверяет, является ли ошибка доменной.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код ошибки, если это AppError.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// ErrorKind класс доменной ошибки, по которому транспорт выбирает ответ.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindInvalidTransition
	KindInvalidProposal
	KindDependencyFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindInvalidTransition:
		return "InvalidTransition"
	case KindInvalidProposal:
		return "InvalidProposal"
	case KindDependencyFailure:
		return "DependencyFailure"
	default:
		return "Internal"
	}
}

//nolint:gochecknoglobals
var kindByCode = map[failure.ErrorCode]ErrorKind{
	errcodes.DealNotFound:        KindNotFound,
	errcodes.UnitNotFound:        KindNotFound,
	errcodes.CompanyNotFound:     KindNotFound,
	errcodes.ProposalNotFound:    KindNotFound,
	errcodes.AlternativeNotFound: KindNotFound,
	errcodes.NotFound:            KindNotFound,

	errcodes.Forbidden:      KindForbidden,
	errcodes.SelfAcceptance: KindForbidden,

	errcodes.InvalidStageTransition:     KindInvalidTransition,
	errcodes.InvalidStatusTransition:    KindInvalidTransition,
	errcodes.DealNotEditable:            KindInvalidTransition,
	errcodes.AlternativeAlreadySelected: KindInvalidTransition,

	errcodes.InvalidProposalPrice: KindInvalidProposal,
	errcodes.DiscountExceeded:     KindInvalidProposal,
	errcodes.NegativeShippingCost: KindInvalidProposal,
	errcodes.InvalidUnitPrice:     KindInvalidProposal,
	errcodes.InvalidCartSelection: KindInvalidProposal,
	errcodes.InvalidFinalTerms:    KindInvalidProposal,
	errcodes.ValidationError:      KindInvalidProposal,

	errcodes.RepresentativeNotFound:   KindDependencyFailure,
	errcodes.ManagementCompanyMissing: KindDependencyFailure,
	errcodes.SequenceUnavailable:      KindDependencyFailure,
}

// Kind относит ошибку к одному из классов таксономии.
func Kind(err error) ErrorKind {
	code, ok := GetCode(err)
	if !ok {
		return KindInternal
	}

	if kind, found := kindByCode[code]; found {
		return kind
	}

	return KindInternal
}

// HasCode проверяет, что в цепочке есть AppError с указанным кодом.
func HasCode(err error, code failure.ErrorCode) bool {
	got, ok := GetCode(err)
	return ok && got == code
}
