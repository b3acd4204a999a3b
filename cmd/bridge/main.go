package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/usecase"
	"github.com/tradewatch/trade-bridge/internal/cache"
	"github.com/tradewatch/trade-bridge/internal/conf"
	"github.com/tradewatch/trade-bridge/internal/data"
	"github.com/tradewatch/trade-bridge/internal/infra/gateway"
	"github.com/tradewatch/trade-bridge/internal/server"
	"github.com/tradewatch/trade-bridge/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()
	fmt.Printf("[Bridge] Trade DB: %s\n", cfg.Storage.DBPath)

	// Initialize gateway client
	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)

	// Shared caches
	seenCache := cache.New[struct{}](cfg.Pipeline.CacheCapacity, cfg.Pipeline.DedupTTL)
	identityCache := cache.New[domain.SenderIdentity](cfg.Pipeline.CacheCapacity, 24*time.Hour)
	channelNameCache := cache.New[string](cfg.Pipeline.CacheCapacity, 24*time.Hour)

	// Initialize usecase layer
	refTable := cfg.ToRefTable()
	ref := cfg.Reference

	tenants := usecase.NewTenantResolver(repos.Tenant)
	deduper := usecase.NewDeduper(seenCache)
	classifier := usecase.NewClassifier(ref.NoiseLines, ref.RequestCues)
	senders := usecase.NewSenderResolver(identityCache, repos.Contact, repos.Trade, nil)
	channels := usecase.NewChannelResolver(channelNameCache, repos.Channel, gatewayClient)
	parser := usecase.NewParser(refTable)

	// Initialize service layer
	dispatcher := service.NewNotificationDispatcher(
		repos.Tenant, gatewayClient,
		cfg.Pipeline.DispatchQueueSize, cfg.Pipeline.DispatchWorkers,
	)
	matcher := usecase.NewAlertMatcher(repos.Alert, dispatcher)

	pipeline := usecase.NewPipeline(
		tenants, deduper, classifier, senders, channels, parser, matcher,
		repos.Trade, repos.Audit,
	)
	pipeline.RematchDuplicates = cfg.Pipeline.RematchDuplicates

	dirSync := usecase.NewDirectorySync(repos.Contact, repos.Channel, repos.Trade, channelNameCache)
	access := usecase.NewAccessControl(repos.Tenant)

	janitor := service.NewCacheJanitor(
		cfg.Pipeline.JanitorInterval,
		seenCache, identityCache, channelNameCache,
	)

	// Initialize HTTP server
	srv := server.NewServer(
		cfg.Server.Addr,
		pipeline, dirSync, access,
		repos.Tenant, repos.Trade, repos.Alert, repos.Audit, repos.Contact, repos.Channel,
	)

	ctx := context.Background()
	dispatcher.Start(ctx)
	janitor.Start(ctx)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
		janitor.Stop()
		dispatcher.Stop()
		repos.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting Trade Bridge...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
