// Command swaptriage serves cross-chain swap order diagnosis tools over HTTP.
// It reconciles both generations of Garden order data plus solver liquidity
// and fiat prices into a structured, evidence-backed verdict per order.
//
// Usage:
//
//	swaptriage --config config.yaml
//	swaptriage --listen :4000 --apibase https://api.garden.finance
//
// The API base may also be set via the GARDEN_API_BASE_URL environment
// variable.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vadiminshakov/swaptriage/config"
	"github.com/vadiminshakov/swaptriage/internal/clients"
	"github.com/vadiminshakov/swaptriage/internal/services/checks"
	"github.com/vadiminshakov/swaptriage/internal/services/diagnose"
	"github.com/vadiminshakov/swaptriage/internal/services/status"
	"github.com/vadiminshakov/swaptriage/internal/web"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	classifier, err := status.FromVariant(cfg.Classifier)
	if err != nil {
		logger.Fatal("invalid classifier config", zap.Error(err))
	}
	amountCheck, err := checks.AmountMismatchFromPolicy(cfg.AmountPolicy)
	if err != nil {
		logger.Fatal("invalid amount policy config", zap.Error(err))
	}

	garden := clients.NewGardenClient(cfg.APIBase, cfg.HTTPTimeout)
	pipeline := diagnose.NewPipeline(logger, diagnose.DefaultChecks(amountCheck)...)
	engine := diagnose.NewEngine(logger, garden, garden, garden, classifier, pipeline, cfg.DiagnosePending)

	server := web.NewServer(cfg.Listen, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.TLSDomains) > 0 {
		err = server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
	} else {
		err = server.Start(ctx)
	}
	if err != nil {
		logger.Fatal("tool server stopped", zap.Error(err))
	}
}
