package dto

import (
	"time"

	"github.com/skilllink/skilllink/internal/entity"
)

// PlaceOrderRequest is the payload for placing an order against a gig.
type PlaceOrderRequest struct {
	GigID        int64  `json:"gigId" validate:"required,gt=0"`
	Requirements string `json:"requirements,omitempty" validate:"omitempty,min=10,max=2000"`
	DeliveryTime int    `json:"deliveryTime,omitempty" validate:"omitempty,min=1,max=365"`
}

// UpdateOrderStatusRequest is the payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed cancelled"`
	Note   string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// DeliveryRequest carries the optional message accompanying a delivery upload.
type DeliveryRequest struct {
	Message string `json:"message,omitempty" form:"message" validate:"omitempty,max=500"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID           int64     `json:"id"`
	BuyerID      int64     `json:"buyerId"`
	SellerID     int64     `json:"sellerId"`
	GigID        int64     `json:"gigId"`
	Status       string    `json:"status"`
	Requirements string    `json:"requirements,omitempty"`
	Note         string    `json:"note,omitempty"`
	DeliveryTime int       `json:"deliveryTime"`
	DeliveryFile string    `json:"deliveryFile,omitempty"`
	Price        float64   `json:"price"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OrderFromEntity maps an order entity to its response shape.
func OrderFromEntity(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:           order.ID,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		GigID:        order.GigID,
		Status:       string(order.Status),
		Requirements: order.Requirements,
		Note:         order.Note,
		DeliveryTime: order.DeliveryTime,
		DeliveryFile: order.DeliveryFile,
		Price:        order.Price,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// OrdersFromEntities maps a slice of order entities.
func OrdersFromEntities(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, OrderFromEntity(order))
	}
	return out
}
