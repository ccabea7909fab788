// apicheck exercises the admin REST API endpoints the streaming tools
// depend on: server status, log file listing, and stream token
// issuance.
//
// Usage: go run ./cmd/apicheck --config configs/logtail.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/craquehouse/vintagestory-server-sub000/internal/api"
	"github.com/craquehouse/vintagestory-server-sub000/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/logtail.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := api.NewClient(
		cfg.Server.BaseURL,
		cfg.Server.APIKey,
		api.WithTimeout(cfg.Server.Timeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("=== Server Status ===")
	status, err := client.GetStatus(ctx)
	if err != nil {
		log.Fatalf("GetStatus failed: %v", err)
	}
	fmt.Printf("State: %s\n", status.State)
	fmt.Printf("Version: %s\n", status.Version)
	fmt.Printf("Uptime: %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	fmt.Printf("Players: %d/%d\n", status.Players, status.MaxPlayers)

	fmt.Println("\n=== Log Files ===")
	files, err := client.ListLogFiles(ctx)
	if err != nil {
		log.Fatalf("ListLogFiles failed: %v", err)
	}
	for i, f := range files {
		fmt.Printf("  %d. %s (%d bytes, modified %s)\n", i+1, f.Name, f.SizeBytes, f.ModifiedAt)
	}

	fmt.Println("\n=== Stream Token ===")
	tok, err := client.RequestStreamToken(ctx)
	if err != nil {
		log.Fatalf("RequestStreamToken failed: %v", err)
	}
	fmt.Printf("Issued: %d-character token\n", len(tok.Value))
	fmt.Printf("TTL: %s (expires %s)\n", tok.TTL, tok.ExpiresAt.Format(time.RFC3339))
}
