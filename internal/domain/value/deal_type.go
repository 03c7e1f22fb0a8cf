package value

type DealType string

const (
	// DealTypeBuyerToIntermediary покупатель платит посреднику полную цену.
	DealTypeBuyerToIntermediary DealType = "buyer-to-intermediary"
	// DealTypeIntermediaryToSeller посредник выкупает товар у продавца.
	DealTypeIntermediaryToSeller DealType = "intermediary-to-seller"
)

func (t DealType) String() string {
	return string(t)
}

func (t DealType) Valid() bool {
	return t == DealTypeBuyerToIntermediary || t == DealTypeIntermediaryToSeller
}

func ParseDealType(s string) (DealType, error) {
	t := DealType(s)
	if !t.Valid() {
		return "", ErrUnknownDealType
	}

	return t, nil
}
