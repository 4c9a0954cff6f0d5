package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/model"
	"github.com/rifat-hossain/bidhaus/internal/service"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

type AuctionHandler struct {
	svc service.AuctionServicer
}

func NewAuctionHandler(svc service.AuctionServicer) *AuctionHandler {
	return &AuctionHandler{svc: svc}
}

// CreateAuction godoc
//
//	@Summary		Create a new Auction
//	@Description	Submit a new auction listing for admin review
//	@Tags			Auctions
//	@Accept			json
//	@Produce		json
//	@Param			auction	body		model.CreateAuctionRequest	true	"Auction details"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		401		{object}	map[string]any
//	@Router			/auctions [post]
func (h *AuctionHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAuctionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	a := &types.Auction{
		Title:         req.Title,
		MerchantID:    claims.UserID,
		Description:   req.Description,
		Condition:     req.Condition,
		Category:      req.Category,
		Images:        req.Images,
		StartingPrice: req.StartingPrice,
		ReservedPrice: req.ReservedPrice,
		BidIncrement:  req.BidIncrement,
		TotalQuantity: req.TotalQuantity,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}
	if req.ProductID != "" {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Invalid product ID format", nil)
			return
		}
		a.ProductID = uuid.NullUUID{UUID: productID, Valid: true}
	}

	if err := h.svc.CreateAuction(r.Context(), a); err != nil {
		var unavailable *service.AvailabilityError
		switch {
		case errors.Is(err, service.ErrInvalidWindow):
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidWindow.Error(), "End time must be after start time", nil)
		case errors.As(err, &unavailable):
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrUnavailable.Error(), unavailable.Message, nil)
		default:
			slog.Error("[AUCTION] create failed", "error", err)
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		}
		return
	}

	resp := map[string]any{
		"auction": a,
	}
	RespondSuccessJSON(w, r, http.StatusCreated, "Auction created successfully", resp)
}

// ListMyAuctions godoc
//
//	@Summary		List the merchant's own Auctions
//	@Tags			Auctions
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	map[string]any
//	@Router			/auctions [get]
func (h *AuctionHandler) ListMyAuctions(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	auctions, err := h.svc.ListByMerchant(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("[DB] failed to list auctions", "merchant_id", claims.UserID, "error", err)
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrDb.Error(), "failed to retrieve auctions", nil)
		return
	}

	resp := map[string]any{
		"auctions": auctions,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Auctions fetched successfully", resp)
}

// UpdateAuction godoc
//
//	@Summary		Update an Auction
//	@Description	Edit auction terms while still pending review; resets approval to pending
//	@Tags			Auctions
//	@Accept			json
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Param			auction		body		model.UpdateAuctionRequest	true	"Editable fields"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		403			{object}	map[string]any
//	@Router			/auctions/{auctionId} [put]
func (h *AuctionHandler) UpdateAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r, chi.URLParam(r, auctionParamKey))
	if !ok {
		return
	}

	var req model.UpdateAuctionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	upd := service.AuctionUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Images:        req.Images,
		ReservedPrice: req.ReservedPrice,
		BidIncrement:  req.BidIncrement,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}

	a, err := h.svc.UpdateAuction(r.Context(), auctionID, claims.UserID, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuctionNotFound):
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
		case errors.Is(err, service.ErrNotOwner):
			RespondErrorJSON(w, r, http.StatusForbidden, ErrForbidden.Error(), "You are not the owner of this auction", nil)
		case errors.Is(err, service.ErrAuctionNotEditable):
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrNotEditable.Error(), "Cannot update auction that's already approved or in active/ended state", nil)
		case errors.Is(err, service.ErrInvalidWindow):
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidWindow.Error(), "End time must be after start time", nil)
		default:
			slog.Error("[AUCTION] update failed", "auction_id", auctionID, "error", err)
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		}
		return
	}

	resp := map[string]any{
		"auction": a,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Auction updated successfully", resp)
}

// DeleteAuction godoc
//
//	@Summary		Delete an Auction
//	@Description	Remove an auction that is still pending approval
//	@Tags			Auctions
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		403			{object}	map[string]any
//	@Router			/auctions/{auctionId} [delete]
func (h *AuctionHandler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r, chi.URLParam(r, auctionParamKey))
	if !ok {
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	if err := h.svc.DeleteAuction(r.Context(), auctionID, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrAuctionNotFound):
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
		case errors.Is(err, service.ErrNotOwner):
			RespondErrorJSON(w, r, http.StatusForbidden, ErrForbidden.Error(), "You are not the owner of this auction", nil)
		case errors.Is(err, service.ErrAuctionNotDeletable):
			RespondErrorJSON(w, r, http.StatusForbidden, ErrNotDeletable.Error(), "Can only delete auctions pending approval", nil)
		default:
			slog.Error("[AUCTION] delete failed", "auction_id", auctionID, "error", err)
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		}
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Auction deleted successfully", "")
}

// AdminListAuctions godoc
//
//	@Summary		List Auctions for moderation
//	@Tags			Admin
//	@Produce		json
//	@Param			status			query		string	false	"Lifecycle status filter"
//	@Param			admin_approval	query		string	false	"Approval filter"
//	@Success		200				{object}	map[string]any
//	@Router			/admin/auctions [get]
func (h *AuctionHandler) AdminListAuctions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	approval := r.URL.Query().Get("admin_approval")

	auctions, err := h.svc.AdminList(r.Context(), status, approval)
	if err != nil {
		slog.Error("[DB] failed to list auctions", "error", err)
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrDb.Error(), "failed to retrieve auctions", nil)
		return
	}

	resp := map[string]any{
		"auctions": auctions,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Auctions fetched successfully", resp)
}

// ApproveAuction godoc
//
//	@Summary		Decide an Auction's approval
//	@Description	Approve or reject a pending auction; activation still waits for the start time
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Param			decision	body		model.ApprovalRequest	true	"Approval decision"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		404			{object}	map[string]any
//	@Router			/admin/auctions/{auctionId}/approval [put]
func (h *AuctionHandler) ApproveAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r, chi.URLParam(r, auctionParamKey))
	if !ok {
		return
	}

	var req model.ApprovalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var reason *types.RejectionReason
	if req.AdminApproval == types.ApprovalRejected {
		reason = &types.RejectionReason{
			Category:    req.Reason,
			Description: req.Description,
		}
		if reason.Category == "" {
			reason.Category = "unspecified"
		}
		if reason.Description == "" {
			reason.Description = "No detailed reason provided"
		}
	}

	if err := h.svc.Approve(r.Context(), auctionID, req.AdminApproval, reason); err != nil {
		switch {
		case errors.Is(err, service.ErrAuctionNotFound):
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
		case errors.Is(err, service.ErrApprovalDecided):
			RespondErrorJSON(w, r, http.StatusConflict, ErrApprovalDecided.Error(), "Auction approval has already been decided", nil)
		default:
			slog.Error("[AUCTION] approval failed", "auction_id", auctionID, "error", err)
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		}
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Auction approval updated successfully", "")
}
