package models

// LocationType - тип сохранённого адреса
type LocationType string

const (
	LocationHome  LocationType = "Home"
	LocationWork  LocationType = "Work"
	LocationOther LocationType = "Other"
)

// Valid сообщает, является ли тип адреса одним из допустимых
func (t LocationType) Valid() bool {
	switch t {
	case LocationHome, LocationWork, LocationOther:
		return true
	}
	return false
}

// Location - сохранённый адрес пользователя.
// IsLast выставлен не более чем у одного адреса пользователя.
type Location struct {
	ID      int64        `json:"id"`
	UserID  int64        `json:"-"`
	Type    LocationType `json:"type"`
	Address string       `json:"address"`
	IsLast  bool         `json:"isLast"`
}
