package value

// Role роль участника в конкретной сделке. Нулевое значение RoleNone означает,
// что участник к сделке отношения не имеет.
type Role int

const (
	RoleNone Role = iota
	RoleBuyer
	RoleSeller
	RoleIntermediaryBuyer
	RoleIntermediarySeller
	RoleIntermediaryDual
)

func (r Role) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleSeller:
		return "seller"
	case RoleIntermediaryBuyer:
		return "intermediary buyer"
	case RoleIntermediarySeller:
		return "intermediary seller"
	case RoleIntermediaryDual:
		return "intermediary dual-role"
	default:
		return ""
	}
}

// IsBuyerSide роль может действовать от стороны покупателя.
func (r Role) IsBuyerSide() bool {
	return r == RoleBuyer || r == RoleIntermediaryBuyer || r == RoleIntermediaryDual
}

// IsSellerSide роль может действовать от стороны продавца.
func (r Role) IsSellerSide() bool {
	return r == RoleSeller || r == RoleIntermediarySeller || r == RoleIntermediaryDual
}

func (r Role) IsIntermediary() bool {
	return r == RoleIntermediaryBuyer || r == RoleIntermediarySeller || r == RoleIntermediaryDual
}
