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

	"github.com/gin-gonic/gin"

	"github.com/sharmila-j/church-checkin-gateway/config"
	"github.com/sharmila-j/church-checkin-gateway/database"
	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/auditlog"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
	"github.com/sharmila-j/church-checkin-gateway/internal/notify"
	"github.com/sharmila-j/church-checkin-gateway/routes"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

// @title Church Check-in Gateway API
// @version 1.0
// @description Check-in station gateway that reconciles against the upstream ChMS.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis
	if err := utils.InitRedis(); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	// Init Kafka
	utils.InitializeKafka()

	// 🔥 Init Firebase
	log.Println("🔄 Initializing Firebase...")
	if err := utils.InitFirebase(); err != nil {
		log.Printf("⚠️ Firebase initialization failed: %v", err)
		log.Println("ℹ️ Continuing without Firebase (push notifications will be disabled)")
	} else if utils.IsFCMEnabled() {
		log.Println("✅ Firebase and FCM initialized successfully")
	} else {
		log.Println("⚠️ Firebase initialized but FCM client unavailable")
	}

	// Auto-migrate gateway-side tables
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auditlog.AuditLog{},
		&history.StationAction{},
		&notify.Notification{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Upstream client, directory cache and the check-in engine
	client := api.NewClient(cfg.ChMSBaseURL, cfg.ChMSAPIToken, cfg.ChMSRequestTimeout)
	dirCache := directory.NewCache()
	dirSvc := directory.NewService(client, dirCache)
	engine := checkin.NewEngine(client, dirSvc)

	// Pollers, the bootstrap retry loop and the notification feed
	// consumer run until shutdown
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	bootErr := engine.Bootstrap(bootCtx)
	cancelBoot()
	if bootErr != nil {
		log.Printf("⚠️ Bootstrap against ChMS failed, retrying in background: %v", bootErr)
		go retryBootstrap(runCtx, engine)
	}

	poller := checkin.NewPoller(engine, cfg.RealtimePollInterval, cfg.EventListPollInterval)
	poller.Start(runCtx)

	notifyRepo := notify.NewRepository(db)
	notifySvc := notify.NewService(notifyRepo)
	notify.NewConsumer(notifySvc).Start(runCtx)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.Setup(router, cfg, routes.Deps{
		Client: client,
		DirSvc: dirSvc,
		Engine: engine,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		fmt.Printf("🚀 Check-in gateway starting on port %s\n", cfg.Port)
		if utils.IsFCMEnabled() {
			fmt.Println("✅ Firebase Cloud Messaging enabled")
		} else {
			fmt.Println("ℹ️ Firebase Cloud Messaging disabled")
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown: stop pollers, freeze the engine, drain Kafka
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🔄 Shutting down...")

	cancelRun()
	engine.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown error: %v", err)
	}

	utils.CloseKafka()
	log.Println("✅ Gateway stopped")
}

// retryBootstrap keeps retrying the initial ChMS load until it
// succeeds. The event-list poller alone cannot recover a failed start:
// it joins against the directory, which is only loaded here.
func retryBootstrap(ctx context.Context, engine *checkin.Engine) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			attemptCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := engine.Bootstrap(attemptCtx)
			cancel()
			if err != nil {
				log.Printf("⚠️ Bootstrap retry failed: %v", err)
				continue
			}
			log.Println("✅ Bootstrap succeeded on retry")
			return
		}
	}
}
