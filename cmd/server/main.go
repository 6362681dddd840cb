package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery-client/config"
	"food-delivery-client/internal/api"
	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/broker"
	"food-delivery-client/internal/cart"
	"food-delivery-client/internal/checkout"
	"food-delivery-client/internal/progress"
	"food-delivery-client/internal/redisclient"
	"food-delivery-client/internal/screens"
	"food-delivery-client/internal/session"
	"food-delivery-client/internal/util"
	"food-delivery-client/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting food delivery client", zap.String("api", cfg.API.BaseURL))

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	probes := map[string]api.Probe{}

	var redisClient *redisclient.Client
	if cfg.Session.TokenStore == "redis" || cfg.Session.ProgressStore == "redis" {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		probes["redis"] = redisClient.Ping
		log.Println("Redis connected")
	}

	var tokens session.TokenStore
	if cfg.Session.TokenStore == "redis" {
		tokens = redisClient.TokenStore()
	} else {
		tokens = session.NewFileTokenStore(cfg.Session.TokenFile)
	}

	var markers progress.MarkerStore
	if cfg.Session.ProgressStore == "redis" {
		markers = redisClient.ProgressStore()
	} else {
		markers = progress.NewMemoryStore()
	}

	var sink broker.Sink
	if cfg.Kafka.Enabled() {
		sink = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		log.Println("Kafka producer initialized")
	}
	events := broker.NewEventPublisher(sink)
	defer events.Close()

	sessions := session.NewStore(tokens, session.WithEvents(events))

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		apiclient.WithRateLimit(cfg.API.RateLimit),
		apiclient.WithTokenSource(sessions),
	)

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 5*time.Second)
	snap := sessions.Restore(restoreCtx)
	restoreCancel()
	if snap.IsLoggedIn {
		logger.Info("Session restored", zap.String("username", snap.User.Username))
	}

	stepper := progress.NewStepper(markers, time.Duration(cfg.Tracking.StepSeconds)*time.Second)
	views := screens.New(client, stepper)

	cartBackend := cart.NewAPIBackend(client)
	cartHelper := cart.NewHelper(cartBackend, cart.WithEvents(events, sessions))
	editor := cart.NewEditor(cartBackend, nil)

	flow := checkout.NewFlow(checkout.NewAPIBackend(client),
		checkout.WithConfirmer(checkout.NewPollingConfirmer(client.Payments, 0, 0)),
		checkout.WithEvents(events, sessions),
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	trackingWorker := worker.NewTrackingWorker(client.Orders, sessions, stepper, events,
		time.Duration(cfg.Tracking.PollSeconds)*time.Second)
	go func() {
		if err := trackingWorker.Start(workerCtx); err != nil {
			log.Printf("Tracking worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Deps{
		API:      client,
		Sessions: sessions,
		Auth:     session.NewAuthenticator(client.Users, sessions),
		Screens:  views,
		Cart:     cartHelper,
		Editor:   editor,
		Checkout: flow,
		Probes:   probes,
	})
	handler.SetupRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: corsHandler.Handler(router),
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	trackingWorker.Stop()

	log.Println("Server exited")
}
