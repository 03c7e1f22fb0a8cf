// Package role вычисляет роль участника в сделке и доступные ему действия.
package role

import (
	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
)

// Resolve возвращает роль пользователя в сделке. Для прямой сделки
// привилегированный пользователь всегда играет обе роли.
func Resolve(deal *entity.Deal, userID uuid.UUID, privileged, direct bool) value.Role {
	if deal == nil {
		return value.RoleNone
	}

	if direct && privileged {
		return value.RoleIntermediaryDual
	}

	if privileged {
		switch deal.Type {
		case value.DealTypeBuyerToIntermediary:
			if !direct {
				return value.RoleIntermediarySeller
			}
		case value.DealTypeIntermediaryToSeller:
			return value.RoleIntermediaryBuyer
		}
	}

	if userID == uuid.Nil {
		return value.RoleNone
	}

	switch userID {
	case deal.BuyerID:
		return value.RoleBuyer
	case deal.SellerID:
		return value.RoleSeller
	default:
		return value.RoleNone
	}
}

// ForIdentity Resolve для действующего пользователя.
func ForIdentity(deal *entity.Deal, identity entity.Identity) value.Role {
	return Resolve(deal, identity.UserID, identity.Privileged, deal.IsDirect())
}

// HasAccess пользователь может видеть сделку.
func HasAccess(deal *entity.Deal, identity entity.Identity) bool {
	if identity.Privileged {
		return true
	}

	matches := func(id, candidate uuid.UUID) bool {
		return id != uuid.Nil && id == candidate
	}

	return matches(identity.UserID, deal.BuyerID) ||
		matches(identity.CompanyID, deal.BuyerCompanyID) ||
		matches(identity.UserID, deal.SellerID) ||
		matches(identity.CompanyID, deal.SellerCompanyID)
}

// CanEdit покупатель редактирует сделку только на стадии запроса.
func CanEdit(deal *entity.Deal, r value.Role) bool {
	return r != value.RoleBuyer || deal.Stage == value.StageRequest
}
