package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Unauthorized        failure.ErrorCode = "Unauthorized"
	InvalidUserID       failure.ErrorCode = "InvalidUserID"
	InvalidCompanyID    failure.ErrorCode = "InvalidCompanyID"
	InvalidDealID       failure.ErrorCode = "InvalidDealID"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Сделки
	DealNotFound               failure.ErrorCode = "DealNotFound"
	UnitNotFound               failure.ErrorCode = "UnitNotFound"
	CompanyNotFound            failure.ErrorCode = "CompanyNotFound"
	ProposalNotFound           failure.ErrorCode = "ProposalNotFound"
	AlternativeNotFound        failure.ErrorCode = "AlternativeNotFound"
	SelfAcceptance             failure.ErrorCode = "SelfAcceptance"
	InvalidStageTransition     failure.ErrorCode = "InvalidStageTransition"
	InvalidStatusTransition    failure.ErrorCode = "InvalidStatusTransition"
	DealNotEditable            failure.ErrorCode = "DealNotEditable"
	AlternativeAlreadySelected failure.ErrorCode = "AlternativeAlreadySelected"
	InvalidProposalPrice       failure.ErrorCode = "InvalidProposalPrice"
	DiscountExceeded           failure.ErrorCode = "DiscountExceeded"
	NegativeShippingCost       failure.ErrorCode = "NegativeShippingCost"
	InvalidUnitPrice           failure.ErrorCode = "InvalidUnitPrice"
	InvalidCartSelection       failure.ErrorCode = "InvalidCartSelection"
	InvalidFinalTerms          failure.ErrorCode = "InvalidFinalTerms"
	RepresentativeNotFound     failure.ErrorCode = "RepresentativeNotFound"
	ManagementCompanyMissing   failure.ErrorCode = "ManagementCompanyMissing"
	SequenceUnavailable        failure.ErrorCode = "SequenceUnavailable"
)
