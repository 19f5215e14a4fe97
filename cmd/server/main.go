package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/chamahub/chama-engine/internal/config"
	"github.com/chamahub/chama-engine/internal/handler"
	"github.com/chamahub/chama-engine/internal/repository"
	"github.com/chamahub/chama-engine/internal/service"
	"github.com/chamahub/chama-engine/pkg/response"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	rulesRepo := repository.NewRulesRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	contribRepo := repository.NewContributionRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewLoanPaymentRepository(db)

	// Initialize services
	rulesService := service.NewRulesService(rulesRepo, memberRepo, redisClient)
	contributionService := service.NewContributionService(rulesRepo, memberRepo, contribRepo, redisClient, cfg)
	loanService := service.NewLoanService(loanRepo, paymentRepo, memberRepo)

	rulesHandler := handler.NewRulesHandler(rulesService)
	contributionHandler := handler.NewContributionHandler(contributionService)
	loanHandler := handler.NewLoanHandler(loanService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := setupRoutes(rulesHandler, contributionHandler, loanHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(response.CORSMiddleware(router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	rulesHandler *handler.RulesHandler,
	contributionHandler *handler.ContributionHandler,
	loanHandler *handler.LoanHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Chama rules
	api.HandleFunc("/chama-rules", rulesHandler.Upsert).Methods("POST")
	api.HandleFunc("/chama-rules", rulesHandler.GetAll).Methods("GET")
	api.HandleFunc("/chama-rules/chama/{chamaId}", rulesHandler.Get).Methods("GET")
	api.HandleFunc("/chama-rules/chama/{chamaId}", rulesHandler.Delete).Methods("DELETE")
	api.HandleFunc("/chama-rules/chama/{chamaId}/exists", rulesHandler.Exists).Methods("GET")
	api.HandleFunc("/chama-rules/chama/{chamaId}/payout-order", rulesHandler.UpdatePayoutOrder).Methods("PUT")
	api.HandleFunc("/chama-rules/chama/{chamaId}/current-payout-member", rulesHandler.SetCurrentPayoutMember).Methods("PUT")

	// Contributions and payout rotation
	api.HandleFunc("/contributions", contributionHandler.Add).Methods("POST")
	api.HandleFunc("/contributions/chama/{chamaId}", contributionHandler.ListByChama).Methods("GET")
	api.HandleFunc("/contributions/member/{memberId}", contributionHandler.ListByMember).Methods("GET")
	api.HandleFunc("/contributions/member/{memberId}/owed", contributionHandler.Owed).Methods("GET")
	api.HandleFunc("/contributions/chama/{chamaId}/total", contributionHandler.Total).Methods("GET")
	api.HandleFunc("/contributions/chama/{chamaId}/payout", contributionHandler.NextPayout).Methods("GET")
	api.HandleFunc("/contributions/chama/{chamaId}/distribute-dividends", contributionHandler.DistributeDividends).Methods("POST")
	api.HandleFunc("/contributions/chama/{chamaId}/cycles", contributionHandler.Cycles).Methods("GET")

	// Loans and the repayment ledger
	api.HandleFunc("/loans", loanHandler.Apply).Methods("POST")
	api.HandleFunc("/loans/member/{memberId}", loanHandler.ListByMember).Methods("GET")
	api.HandleFunc("/loans/chama/{chamaId}", loanHandler.ListByChama).Methods("GET")
	api.HandleFunc("/loans/{loanId}/status", loanHandler.UpdateStatus).Methods("PUT")
	api.HandleFunc("/loans/{loanId}/status", loanHandler.Status).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.ListPayments).Methods("GET")
	api.HandleFunc("/loan-payments/chama/{chamaId}", loanHandler.ListPaymentsByChama).Methods("GET")
	api.HandleFunc("/loan-payments/payer/{payerId}", loanHandler.ListPaymentsByPayer).Methods("GET")

	return router
}
