package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Gig is a service listing published by a seller.
type Gig struct {
	bun.BaseModel `bun:"table:gigs"`

	ID           int64     `bun:",pk,autoincrement"`
	SellerID     int64     `bun:"seller_id,notnull"`
	Title        string    `bun:"title,notnull"`
	Description  string    `bun:"description,notnull"`
	Price        float64   `bun:"price,notnull"`
	Category     string    `bun:"category,notnull"`
	DeliveryTime int       `bun:"delivery_time"`
	Tags         []string  `bun:"tags,array"`
	Images       []string  `bun:"images,array"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}
