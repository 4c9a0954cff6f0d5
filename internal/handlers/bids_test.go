package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/service"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBidService struct {
	placeResult service.PlaceBidResult
	placeErr    error
	detail      *service.AuctionDetail
	detailErr   error

	gotAuctionID uuid.UUID
	gotBidder    types.Bidder
	gotAmount    float64
}

func (s *stubBidService) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder types.Bidder, amount float64) (service.PlaceBidResult, error) {
	s.gotAuctionID = auctionID
	s.gotBidder = bidder
	s.gotAmount = amount
	return s.placeResult, s.placeErr
}

func (s *stubBidService) AuctionDetail(ctx context.Context, auctionID uuid.UUID) (*service.AuctionDetail, error) {
	s.gotAuctionID = auctionID
	return s.detail, s.detailErr
}

func bidRouter(svc service.BidServicer) *chi.Mux {
	h := NewBidHandler(svc)
	mux := chi.NewMux()
	mux.Post("/auctions/{auctionId}/bids", h.PlaceBid)
	mux.Get("/auctions/{auctionId}", h.AuctionDetail)
	return mux
}

func authedRequest(method, target string, body any, claims *config.UserClaims) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), config.UserClaimKey, claims))
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func testClaims() *config.UserClaims {
	return &config.UserClaims{
		UserID: uuid.New(),
		Name:   "alice",
		Email:  "alice@example.com",
		Role:   config.RoleUser,
	}
}

func TestPlaceBidHandler(t *testing.T) {
	auctionID := uuid.New()
	claims := testClaims()

	tests := []struct {
		name           string
		target         string
		payload        any
		claims         *config.UserClaims
		stub           stubBidService
		expectedStatus int
		expectedCode   string
		check          func(t *testing.T, body map[string]any)
	}{
		{
			name:    "accepted bid",
			target:  "/auctions/" + auctionID.String() + "/bids",
			payload: map[string]any{"bid_amount": 110},
			claims:  claims,
			stub: stubBidService{
				placeResult: service.PlaceBidResult{HighestBid: 110, TotalBids: 1},
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Bid placed successfully", body["message"])
				data, ok := body["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, 110.0, data["highest_bid"])
				assert.Equal(t, 1.0, data["total_bids"])
			},
		},
		{
			name:    "raised own bid",
			target:  "/auctions/" + auctionID.String() + "/bids",
			payload: map[string]any{"bid_amount": 150},
			claims:  claims,
			stub: stubBidService{
				placeResult: service.PlaceBidResult{HighestBid: 150, TotalBids: 1, Updated: true},
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Bid updated successfully", body["message"])
			},
		},
		{
			name:           "bid below floor",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 80},
			claims:         claims,
			stub:           stubBidService{placeErr: &service.BidTooLowError{MinBid: 110}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BID_TOO_LOW",
			check: func(t *testing.T, body map[string]any) {
				errObj, ok := body["error"].(map[string]any)
				require.True(t, ok)
				assert.Contains(t, errObj["message"], "$110.00")
			},
		},
		{
			name:           "auction not active",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 110},
			claims:         claims,
			stub:           stubBidService{placeErr: service.ErrAuctionNotActive},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "AUCTION_NOT_ACTIVE",
		},
		{
			name:           "auction not found",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 110},
			claims:         claims,
			stub:           stubBidService{placeErr: service.ErrAuctionNotFound},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "AUCTION_NOT_FOUND",
		},
		{
			name:           "persistence failure",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 110},
			claims:         claims,
			stub:           stubBidService{placeErr: fmt.Errorf("persist bid: connection reset")},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:           "zero amount fails validation",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 0},
			claims:         claims,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "malformed auction id",
			target:         "/auctions/not-a-uuid/bids",
			payload:        map[string]any{"bid_amount": 110},
			claims:         claims,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "missing claims",
			target:         "/auctions/" + auctionID.String() + "/bids",
			payload:        map[string]any{"bid_amount": 110},
			claims:         nil,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTH_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := tt.stub
			mux := bidRouter(&stub)

			req := authedRequest(http.MethodPost, tt.target, tt.payload, tt.claims)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeBody(t, rec)

			if tt.expectedCode != "" {
				errObj, ok := body["error"].(map[string]any)
				require.True(t, ok, "error payload expected")
				assert.Equal(t, tt.expectedCode, errObj["code"])
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestPlaceBidHandlerPassesBidderIdentity(t *testing.T) {
	auctionID := uuid.New()
	claims := testClaims()
	stub := stubBidService{placeResult: service.PlaceBidResult{HighestBid: 110, TotalBids: 1}}
	mux := bidRouter(&stub)

	req := authedRequest(http.MethodPost, "/auctions/"+auctionID.String()+"/bids", map[string]any{"bid_amount": 110}, claims)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auctionID, stub.gotAuctionID)
	assert.Equal(t, claims.UserID, stub.gotBidder.ID)
	assert.Equal(t, claims.Email, stub.gotBidder.Email)
	assert.Equal(t, 110.0, stub.gotAmount)
}

func TestAuctionDetailHandler(t *testing.T) {
	auctionID := uuid.New()

	t.Run("found", func(t *testing.T) {
		stub := stubBidService{detail: &service.AuctionDetail{
			Auction:    types.Auction{ID: auctionID, Title: "Vintage Camera", StartingPrice: 100},
			Bids:       []types.BidEntry{},
			HighestBid: 100,
		}}
		mux := bidRouter(&stub)

		req := httptest.NewRequest(http.MethodGet, "/auctions/"+auctionID.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Vintage Camera", data["title"])
		assert.Equal(t, 100.0, data["highest_bid"])
	})

	t.Run("not found", func(t *testing.T) {
		stub := stubBidService{detailErr: service.ErrAuctionNotFound}
		mux := bidRouter(&stub)

		req := httptest.NewRequest(http.MethodGet, "/auctions/"+auctionID.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
