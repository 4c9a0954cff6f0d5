package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rifat-hossain/bidhaus/internal/model"
	"github.com/rifat-hossain/bidhaus/internal/service"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

const auctionParamKey string = "auctionId"

type BidHandler struct {
	svc service.BidServicer
}

func NewBidHandler(svc service.BidServicer) *BidHandler {
	return &BidHandler{svc: svc}
}

// PlaceBid godoc
//
//	@Summary		Place a Bid on an Auction
//	@Description	Place a bid on a specific active auction
//	@Tags			Bids
//	@Accept			json
//	@Produce		json
//	@Param			auctionId	path		string			true	"Auction ID"
//	@Param			bid			body		model.PlaceBidRequest	true	"Bid details"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		401			{object}	map[string]any
//	@Failure		500			{object}	map[string]any
//	@Router			/auctions/{auctionId}/bids [post]
func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r, chi.URLParam(r, auctionParamKey))
	if !ok {
		return
	}

	var req model.PlaceBidRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	bidder := types.Bidder{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
	}

	result, err := h.svc.PlaceBid(r.Context(), auctionID, bidder, req.BidAmount)
	if err != nil {
		var tooLow *service.BidTooLowError
		switch {
		case errors.As(err, &tooLow):
			// The computed floor goes back to the client so it can retry
			// with a corrected amount immediately.
			details := []model.ErrorDetails{{
				Field: "bid_amount",
				Issue: tooLow.Error(),
			}}
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrBidLow.Error(), tooLow.Error(), details)
		case errors.Is(err, service.ErrAuctionNotFound):
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
		case errors.Is(err, service.ErrAuctionNotActive):
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrAuctionNotActive.Error(), "Auction is not active", nil)
		default:
			slog.Error("[BID] failed to place bid", "auction_id", auctionID, "error", err)
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Failed to place bid", nil)
		}
		return
	}

	message := "Bid placed successfully"
	if result.Updated {
		message = "Bid updated successfully"
	}
	RespondSuccessJSON(w, r, http.StatusOK, message, result)
}

// AuctionDetail godoc
//
//	@Summary		Get Auction detail
//	@Description	Retrieve an auction merged with its bid history and derived highest bid
//	@Tags			Bids
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		404			{object}	map[string]any
//	@Router			/auctions/{auctionId} [get]
func (h *BidHandler) AuctionDetail(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r, chi.URLParam(r, auctionParamKey))
	if !ok {
		return
	}

	detail, err := h.svc.AuctionDetail(r.Context(), auctionID)
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
			return
		}
		slog.Error("[DB] failed to fetch auction", "auction_id", auctionID, "error", err)
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrDb.Error(), "failed to retrieve auction", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Auction fetched successfully", detail)
}
