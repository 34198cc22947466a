package dto

import (
	"time"

	"github.com/skilllink/skilllink/internal/entity"
)

// CreateGigRequest is the payload for publishing a gig.
type CreateGigRequest struct {
	Title        string   `json:"title" form:"title" validate:"required,min=5,max=100"`
	Description  string   `json:"description" form:"description" validate:"required,min=20,max=2000"`
	Price        float64  `json:"price" form:"price" validate:"required,min=1,max=10000"`
	Category     string   `json:"category" form:"category" validate:"required,oneof=web-development mobile-development design writing marketing video-animation music-audio business data photography"`
	DeliveryTime int      `json:"deliveryTime,omitempty" form:"deliveryTime" validate:"omitempty,min=1,max=365"`
	Tags         []string `json:"tags,omitempty" form:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// UpdateGigRequest carries partial gig updates; zero fields are left untouched.
type UpdateGigRequest struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,min=5,max=100"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,min=20,max=2000"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,min=1,max=10000"`
	Category     *string  `json:"category,omitempty" validate:"omitempty,oneof=web-development mobile-development design writing marketing video-animation music-audio business data photography"`
	DeliveryTime *int     `json:"deliveryTime,omitempty" validate:"omitempty,min=1,max=365"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// GigQuery captures list filters from the query string.
type GigQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=web-development mobile-development design writing marketing video-animation music-audio business data photography"`
	Tag      string `query:"tag" validate:"omitempty,max=50"`
	Search   string `query:"search" validate:"omitempty,max=100"`
	Sort     string `query:"sort" validate:"omitempty,oneof=price_asc price_desc"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// GigResponse represents a gig as exposed via transport layers.
type GigResponse struct {
	ID           int64     `json:"id"`
	SellerID     int64     `json:"sellerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	DeliveryTime int       `json:"deliveryTime,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Images       []string  `json:"images,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// GigFromEntity maps a gig entity to its response shape.
func GigFromEntity(gig *entity.Gig) GigResponse {
	return GigResponse{
		ID:           gig.ID,
		SellerID:     gig.SellerID,
		Title:        gig.Title,
		Description:  gig.Description,
		Price:        gig.Price,
		Category:     gig.Category,
		DeliveryTime: gig.DeliveryTime,
		Tags:         gig.Tags,
		Images:       gig.Images,
		CreatedAt:    gig.CreatedAt,
		UpdatedAt:    gig.UpdatedAt,
	}
}

// GigsFromEntities maps a slice of gig entities.
func GigsFromEntities(gigs []*entity.Gig) []GigResponse {
	out := make([]GigResponse, 0, len(gigs))
	for _, gig := range gigs {
		out = append(out, GigFromEntity(gig))
	}
	return out
}
