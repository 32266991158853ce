package models

// Money fields are int64 minor units (kopecks); plain floats drift across
// many small relative adjustments.

type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name        string `gorm:"not null"                   json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `gorm:"not null;check:price >= 0"  json:"price"`
	Stock       int64  `gorm:"not null;default:0"         json:"stock"`
	Category    string `gorm:"index"                      json:"category"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
	CreatedAt    int64  `gorm:"not null"                 json:"created_at"`
}

// Status true = confirmed (stock decremented for every line),
// false = cancelled (stock returned to the pool).
type Order struct {
	ID        uint  `gorm:"primaryKey"     json:"id"`
	UserID    uint  `gorm:"index;not null" json:"user_id"`
	Total     int64 `gorm:"not null"       json:"total"`
	Status    bool  `gorm:"not null"       json:"status"`
	CreatedAt int64 `gorm:"not null"       json:"created_at"`
}

// UnitPrice is the price at the time of purchase and never changes after
// the line is created, even when Amount does.
type OrderLine struct {
	ID        uint  `gorm:"primaryKey"                 json:"id"`
	OrderID   uint  `gorm:"index;not null"             json:"order_id"`
	ProductID uint  `gorm:"not null"                   json:"product_id"`
	Amount    int64 `gorm:"not null;check:amount > 0"  json:"amount"`
	UnitPrice int64 `gorm:"not null"                   json:"unit_price"`
	Subtotal  int64 `gorm:"not null"                   json:"subtotal"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
