package service

import (
	"errors"
	"fmt"
)

var (
	// users
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// auctions
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrNotOwner            = errors.New("not the owner of this auction")
	ErrAuctionNotEditable  = errors.New("auction can no longer be edited")
	ErrAuctionNotDeletable = errors.New("only auctions pending approval can be deleted")
	ErrApprovalDecided     = errors.New("auction approval already decided")
	ErrInvalidWindow       = errors.New("end time must be after start time")
)

// BidTooLowError rejects a bid below the current floor. MinBid carries the
// computed minimum so clients can offer a corrected amount without another
// round trip.
type BidTooLowError struct {
	MinBid float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount must be at least $%.2f", e.MinBid)
}

// AvailabilityError reports a failed product availability check at auction
// creation.
type AvailabilityError struct {
	Message string
}

func (e *AvailabilityError) Error() string {
	return e.Message
}
