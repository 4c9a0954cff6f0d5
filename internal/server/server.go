package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/db"
	"github.com/rifat-hossain/bidhaus/internal/events"
	"github.com/rifat-hossain/bidhaus/internal/handlers"
	"github.com/rifat-hossain/bidhaus/internal/notify"
	"github.com/rifat-hossain/bidhaus/internal/repository"
	"github.com/rifat-hossain/bidhaus/internal/scheduler"
	"github.com/rifat-hossain/bidhaus/internal/service"
	"github.com/rifat-hossain/bidhaus/internal/ws"
	"github.com/rifat-hossain/bidhaus/pkg/logger"
	"github.com/rifat-hossain/bidhaus/pkg/utils"
	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	HTTPServer     *http.Server
	AuthService    *service.AuthService
	AuctionService *service.AuctionService
	BidService     *service.BidService
	Logger         *logger.Logger
	Pool           *pgxpool.Pool
	Bus            events.Bus
	Hub            *ws.Hub
	Sched          *scheduler.Scheduler

	fanoutCancel context.CancelFunc
}

func New() (*Server, error) {
	mux := chi.NewMux()
	log := logger.NewLogger()
	host := utils.GetEnv("SERVER_HOST", "0.0.0.0")
	port := utils.GetEnv("SERVER_PORT", "8080")
	dbDsn := utils.GetEnv("DB_DSN", "")

	serverAddr := fmt.Sprintf("%s:%s", host, port)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, dbDsn)
	if err != nil {
		return nil, fmt.Errorf("[DB] connection failed: %w", err)
	}

	bus, err := events.NewRedisBus(ctx, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("[EVENTS] redis connection failed: %w", err)
	}

	auctionRepo := repository.NewAuctionrepo(pool)
	bidRepo := repository.NewBidrepo(pool)
	userRepo := repository.NewUserrepo(pool)
	productRepo := repository.NewProductrepo(pool)
	notificationRepo := repository.NewNotificationrepo(pool)

	email := notify.NewSMTPSender()
	hub := ws.NewHub(log)

	lifecycle := service.NewLifecycleService(auctionRepo, bidRepo, userRepo, email, bus, log)
	sched := scheduler.New(lifecycle, log)

	authService, err := service.NewAuthService(userRepo)
	if err != nil {
		pool.Close()
		return nil, err
	}
	auctionService := service.NewAuctionService(auctionRepo, productRepo, sched, log)
	bidService := service.NewBidService(auctionRepo, bidRepo, notificationRepo, email, bus, log)

	// Rebuild the lifecycle timers from the auctions table before traffic
	// arrives; transitions missed while down fire immediately.
	if err := sched.Restore(ctx, auctionRepo); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[SCHEDULER] restore failed: %w", err)
	}

	serv := &Server{
		Logger: log,
		HTTPServer: &http.Server{
			Addr:         serverAddr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		AuthService:    authService,
		AuctionService: auctionService,
		BidService:     bidService,
		Pool:           pool,
		Bus:            bus,
		Hub:            hub,
		Sched:          sched,
	}

	serv.startFanout()

	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)

	serv.Routes(mux, handlers.NewUserHandler(authService),
		handlers.NewAuctionHandler(auctionService),
		handlers.NewBidHandler(bidService),
		handlers.NewWSHandler(hub))
	return serv, nil
}

// startFanout bridges the event bus into the websocket rooms. Each event is
// delivered to the room named by its auction ID.
func (s *Server) startFanout() {
	ctx, cancel := context.WithCancel(context.Background())
	s.fanoutCancel = cancel

	go func() {
		err := s.Bus.Subscribe(ctx, func(e events.Event) {
			payload, err := json.Marshal(e)
			if err != nil {
				s.Logger.Warnw("[WS] failed to encode event", "type", e.Type, "error", err)
				return
			}
			s.Hub.Broadcast(e.AuctionID.String(), payload)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.Logger.Errorw("[WS] event subscription ended", "error", err)
		}
	}()
}

func (s *Server) Run() error {
	s.Logger.Infof("[SERVER] running at -> " + s.HTTPServer.Addr)
	// Create context that listens for the interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run Server in the background
	go func() {
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("[SERVER] failed to serve -> " + err.Error())
		}
	}()

	// Listen for the interrupt signal
	<-ctx.Done()

	// create shutdown context with 30 - sec timeout
	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting transitions and events first; Restore picks the timers
	// back up on the next start.
	s.Sched.Stop()
	s.fanoutCancel()

	if err := s.HTTPServer.Shutdown(shutCtx); err != nil {
		s.Logger.Errorw("[SERVER] shutdown failed", "error", err)
		return err
	}

	if err := s.Bus.Close(); err != nil {
		s.Logger.Errorw("[EVENTS] failed to close bus", "error", err)
	}
	s.Pool.Close()

	return nil
}
