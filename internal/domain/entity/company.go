package entity

import (
	"github.com/google/uuid"

	"gem_market/internal/domain/value"
)

type Company struct {
	ID              uuid.UUID
	Name            string
	ShippingAddress Address
	LegalAddress    Address
}

// ReceivingAddress адрес приёмки товара компанией.
func (c Company) ReceivingAddress() Address {
	addr := c.ShippingAddress
	if addr.Street == "" {
		addr = c.LegalAddress
	}
	addr.Recipient = c.Name

	return addr
}

// Representative сотрудник компании, который может выступать продавцом.
type Representative struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      value.MemberRole
	Active    bool
}

// Identity действующий пользователь, уже прошедший аутентификацию.
type Identity struct {
	UserID     uuid.UUID
	CompanyID  uuid.UUID
	Privileged bool
}
