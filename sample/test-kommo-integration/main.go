// Command test-kommo-integration pushes one synthetic presale lead into the configured
// Kommo account, the same way the forward worker does, and prints the created lead.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/config"
	"github.com/xavierca1/presale-funnel/internal/entity"
	"github.com/xavierca1/presale-funnel/internal/infra/integration/kommo"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info(".env not found, using process environment")
	}

	cfg, err := env.ParseAs[config.KommoConfig]()
	if err != nil {
		logger.Fatal("parse env", zap.Error(err))
	}
	if cfg.BaseURL == "" || cfg.APIToken == "" {
		logger.Fatal("KOMMO_BASE_URL and KOMMO_API_TOKEN must be set")
	}

	l, err := entity.NewLead("Jane", "Doe", "jane.doe+smoke@example.com", "6045551234", entity.BuyerInvestor, entity.SourceGoogle)
	if err != nil {
		logger.Fatal("build lead", zap.Error(err))
	}
	campaign := "smoke-test"
	l.UTMCampaign = &campaign
	lead := entity.NewForwardedLead(l, entity.EventLeadCreated, "presale-smoke")

	input := kommo.NewCreateLeadInput(lead)
	logger.Info("creating kommo lead",
		zap.String("title", input.Title),
		zap.String("email", input.Email),
		zap.Strings("tags", input.Tags))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := kommo.NewClient(cfg.BaseURL, cfg.APIToken, cfg.StatusID, logger)
	leadID, err := client.CreateLead(ctx, input)
	if err != nil {
		logger.Error("create kommo lead", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("kommo lead #%d created for %s\n", leadID, lead.LeadID)
}
