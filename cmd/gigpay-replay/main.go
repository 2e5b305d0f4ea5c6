package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/gigpay/internal/db"
	"github.com/nurpe/gigpay/internal/logger"
	"github.com/nurpe/gigpay/internal/replay"
	"github.com/nurpe/gigpay/internal/repository"
	"github.com/nurpe/gigpay/internal/service"
)

func main() {
	logPath := flag.String("log", "", "path to the YAML command log")
	dsn := flag.String("dsn", "", "sqlite DSN (defaults to a fresh in-memory database)")
	owner := flag.String("owner", "platform-owner", "platform owner identity")
	vault := flag.String("vault", "gigpay-escrow-vault", "escrow vault identity")
	feeRate := flag.Uint("fee", uint(service.DefaultFeeRate), "initial platform fee in basis points")
	level := flag.String("level", "warn", "log level")
	flag.Parse()

	log := logger.New("development", logger.Options{Level: *level})

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gigpay-replay -log <file> [-dsn <sqlite dsn>]")
		os.Exit(2)
	}
	if *feeRate > uint(service.MaxFeeRate) {
		fmt.Fprintf(os.Stderr, "fee must be at most %d\n", service.MaxFeeRate)
		os.Exit(2)
	}

	file, err := os.Open(*logPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open command log")
	}
	defer file.Close()

	cmds, err := replay.Parse(file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse command log")
	}

	if *dsn == "" {
		*dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}
	database, err := db.OpenSQLite(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	ctx := context.Background()
	engine, err := service.NewEngine(ctx, repository.NewStore(database), log, service.EngineOptions{
		Owner:       *owner,
		EscrowVault: *vault,
		FeeRate:     uint32(*feeRate),
		Now:         replay.LogicalClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init payment engine")
	}

	enc := json.NewEncoder(os.Stdout)
	for _, res := range replay.Run(ctx, engine, cmds) {
		if err := enc.Encode(res); err != nil {
			log.Fatal().Err(err).Msg("failed to write result")
		}
	}
}
