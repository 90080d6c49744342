package models

// User represents a member of the user directory. The numeric ID is
// assigned by the store on first save and stays off the JSON surface;
// username is the externally visible key.
type User struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=4,max=20"`
	Name     string `json:"name" gorm:"type:varchar(255)" validate:"required,min=2,max=50"`
	Email    string `json:"email" gorm:"type:varchar(255)" validate:"required,email"`
	Gender   string `json:"gender" gorm:"type:varchar(16)" validate:"required,oneof=Male Female Other"`
	Picture  string `json:"picture" gorm:"type:varchar(512)" validate:"required,picurl"`
	Country  string `json:"country" gorm:"type:varchar(100)" validate:"required"`
	State    string `json:"state" gorm:"type:varchar(100)" validate:"required"`
	City     string `json:"city" gorm:"type:varchar(100)" validate:"required"`
}

// Page is the envelope returned by paginated listings.
type Page struct {
	Items      []User `json:"items"`
	TotalItems int64  `json:"totalItems"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	TotalPages int    `json:"totalPages"`
}

// UserTree groups users by country, then state, then city. Leaf slices
// keep the store's listing order.
type UserTree map[string]map[string]map[string][]User
