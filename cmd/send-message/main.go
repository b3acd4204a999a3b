package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tradewatch/trade-bridge/internal/conf"
	"github.com/tradewatch/trade-bridge/internal/data"
	"github.com/tradewatch/trade-bridge/internal/infra/gateway"
)

// send-message delivers one text message through a tenant's gateway
// instance. Useful for verifying gateway credentials and alert
// destinations.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 4 {
		fmt.Println("Usage: send-message <tenant_id> <destination> <message>")
		os.Exit(1)
	}
	tenantID := os.Args[1]
	destination := os.Args[2]
	message := os.Args[3]

	cfg := conf.LoadFromEnv()

	repos, err := data.NewRepositories(cfg.Storage.DBPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer repos.Close()

	ctx := context.Background()
	tenant, err := repos.Tenant.GetByID(ctx, tenantID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if tenant == nil {
		fmt.Printf("Error: tenant %s not found\n", tenantID)
		os.Exit(1)
	}

	client := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)
	if err := client.SendText(ctx, tenant.Credentials(), destination, message); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message sent successfully!")
}
