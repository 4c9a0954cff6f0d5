package handlers

import "errors"

var (
	// common error code
	ErrInternalServer = errors.New("INTERNAL_SERVER_ERROR")
	ErrInvalidRequest = errors.New("VALIDATION_FAILED")
	ErrInvalidJson    = errors.New("INVALID_JSON_FORMAT")
	ErrMissingParam   = errors.New("MISSING_PARAM")
	ErrDb             = errors.New("DB_ERROR")

	// auth error code
	ErrAuthFailed    = errors.New("AUTH_FAILED")
	ErrMissingToken  = errors.New("MISSING_TOKEN")
	ErrMissingCookie = errors.New("MISSING_COOKIE")
	ErrToken         = errors.New("TOKEN_ERROR")
	ErrForbidden     = errors.New("FORBIDDEN")

	// user error code
	ErrUserExists = errors.New("USER_EXISTS")

	// auction error code
	ErrAuctionNotFound  = errors.New("AUCTION_NOT_FOUND")
	ErrAuctionNotActive = errors.New("AUCTION_NOT_ACTIVE")
	ErrNotEditable      = errors.New("AUCTION_NOT_EDITABLE")
	ErrNotDeletable     = errors.New("AUCTION_NOT_DELETABLE")
	ErrApprovalDecided  = errors.New("APPROVAL_ALREADY_DECIDED")
	ErrUnavailable      = errors.New("PRODUCT_UNAVAILABLE")
	ErrInvalidWindow    = errors.New("INVALID_TIME_WINDOW")

	// bid error code
	ErrBidLow = errors.New("BID_TOO_LOW")
)
