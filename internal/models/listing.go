package models

import (
	"math"
	"time"
)

// Listing represents a sellable item. The only mutation after creation is the
// sold flag, which moves LISTED -> SOLD exactly once and never back.
type Listing struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"` // dollars; converted to minor units at the payment boundary
	SellerID    int        `json:"sellerId" db:"seller_id"`
	ImagePath   string     `json:"imageUrl" db:"image_path"`
	Sold        bool       `json:"sold" db:"sold"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	SoldAt      *time.Time `json:"soldAt,omitempty" db:"sold_at"`
}

// ListingPublic is the listing view returned to buyers, with the seller
// username resolved.
type ListingPublic struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	SellerUsername string  `json:"sellerUsername"`
	ImageURL       string  `json:"imageUrl"`
	Sold           bool    `json:"sold"`
}

// AmountMinorUnits converts the listing price to integer minor currency units,
// rounding half away from zero. Fractional-cent prices are possible in the
// stored decimal, so the rounding rule is fixed here and nowhere else.
func (l *Listing) AmountMinorUnits() int64 {
	return int64(math.Round(l.Price * 100))
}
