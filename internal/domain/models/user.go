package models

// User представляет пользователя приложения
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	PassHash  []byte `json:"-"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname,omitempty"`
	Phone     string `json:"phone"`
	Photo     string `json:"photo,omitempty"`
}

// DefaultPhoto - аватар, который получает новый пользователь
const DefaultPhoto = "static-00.iconduck.com/assets.00/user-profile-icon-1024x1024-1l5txyn1.png"
