package model

import "time"

// Request schemas, one per endpoint. Unknown or malformed payloads are
// rejected before any business logic runs.

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user merchant"`
}

type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateAuctionRequest struct {
	Title         string    `json:"title" validate:"required,min=3,max=200"`
	ProductID     string    `json:"product_id" validate:"omitempty,uuid"`
	Description   string    `json:"description"`
	Condition     string    `json:"condition" validate:"required,oneof=new used"`
	Category      string    `json:"category" validate:"required"`
	Images        []string  `json:"images"`
	StartingPrice float64   `json:"starting_price" validate:"gte=0"`
	ReservedPrice float64   `json:"reserved_price" validate:"gte=0"`
	BidIncrement  float64   `json:"bid_increment" validate:"omitempty,gt=0"`
	TotalQuantity int       `json:"total_quantity" validate:"omitempty,gte=1"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
}

type UpdateAuctionRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category" validate:"omitempty,min=1"`
	Images        []string   `json:"images"`
	ReservedPrice *float64   `json:"reserved_price" validate:"omitempty,gte=0"`
	BidIncrement  *float64   `json:"bid_increment" validate:"omitempty,gt=0"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
}

type PlaceBidRequest struct {
	BidAmount float64 `json:"bid_amount" validate:"required,gt=0"`
}

type ApprovalRequest struct {
	AdminApproval string `json:"admin_approval" validate:"required,oneof=approved rejected"`
	Reason        string `json:"reason"`
	Description   string `json:"description"`
}
