package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rifat-hossain/bidhaus/internal/handlers"
	mw "github.com/rifat-hossain/bidhaus/internal/middleware"
	"github.com/rifat-hossain/bidhaus/pkg/config"
)

func (s *Server) Routes(mux *chi.Mux, users *handlers.UserHandler, auctions *handlers.AuctionHandler, bids *handlers.BidHandler, wsh *handlers.WSHandler) {
	mux.HandleFunc("GET /api/v1/health", s.healthCheck)

	mux.HandleFunc("POST /api/v1/users", users.RegisterUser)
	mux.HandleFunc("POST /api/v1/users/login", users.LoginUser)
	mux.HandleFunc("POST /api/v1/users/refresh", users.RefreshToken)

	mux.HandleFunc("GET /ws", wsh.Serve)

	mux.Route("/api/v1/auctions", func(r chi.Router) {
		// Auction detail is public; everything else needs a token.
		r.Get("/{auctionId}", bids.AuctionDetail)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(s.AuthService))
			r.Post("/{auctionId}/bids", bids.PlaceBid)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(config.RoleMerchant, config.RoleAdmin))
				r.Post("/", auctions.CreateAuction)
				r.Get("/", auctions.ListMyAuctions)
				r.Put("/{auctionId}", auctions.UpdateAuction)
				r.Delete("/{auctionId}", auctions.DeleteAuction)
			})
		})
	})

	mux.Route("/api/v1/admin/auctions", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(s.AuthService))
		r.Use(mw.RequireRole(config.RoleAdmin))

		r.Get("/", auctions.AdminListAuctions)
		r.Put("/{auctionId}/approval", auctions.ApproveAuction)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "ok",
		"time":    time.Now().Format(time.RFC3339),
		"timers":  s.Sched.Pending(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(resp)
}
