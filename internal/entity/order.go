package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Status enumerates the order workflow states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order represents one buyer-seller transaction against a gig.
//
// Buyer, seller, gig and price are fixed at creation; only status, note and
// the delivery file change afterwards. Orders are never deleted.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID           int64     `bun:",pk,autoincrement"`
	BuyerID      int64     `bun:"buyer_id,notnull"`
	SellerID     int64     `bun:"seller_id,notnull"`
	GigID        int64     `bun:"gig_id,notnull"`
	Status       Status    `bun:"status,notnull,default:'pending'"`
	Requirements string    `bun:"requirements"`
	Note         string    `bun:"note"`
	DeliveryTime int       `bun:"delivery_time,notnull"`
	DeliveryFile string    `bun:"delivery_file,nullzero"`
	Price        float64   `bun:"price,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}

// IsBuyer reports whether the given user is the order's buyer.
func (o *Order) IsBuyer(userID int64) bool {
	return o != nil && o.BuyerID == userID
}

// IsSeller reports whether the given user is the order's seller.
func (o *Order) IsSeller(userID int64) bool {
	return o != nil && o.SellerID == userID
}
