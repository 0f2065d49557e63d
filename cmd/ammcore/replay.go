package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammCore/internal/config"
	"ammCore/internal/model"
	"ammCore/internal/replay"
	"ammCore/internal/storage"
	"ammCore/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input journal is required")
	}
	if !common.IsHexAddress(cfg.PoolAddress) {
		return fmt.Errorf("invalid pool address: %s", cfg.PoolAddress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer input.Close()

	ops, err := replay.ReadOps(input)
	if err != nil {
		return err
	}

	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)

	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		sink = &teeStorage{ctx: ctx, jsonl: sink, pg: pgStore}
	}

	runner := replay.NewRunner(replay.RunConfig{
		PoolAddress: common.HexToAddress(cfg.PoolAddress),
		BatchSize:   cfg.BatchSize,
	}, sink, logger)

	logger.Info("replay start",
		zap.String("in", cfg.Input),
		zap.String("out", cfg.Out),
		zap.String("pool_address", cfg.PoolAddress),
		zap.Int("ops", len(ops)),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("postgres", pgStore != nil),
	)

	state, err := runner.Run(ctx, ops)
	if err != nil {
		return err
	}

	if pgStore != nil {
		if err := pgStore.UpsertPoolState(ctx, state); err != nil {
			return fmt.Errorf("store pool state: %w", err)
		}
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal pool state: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// teeStorage writes event batches to JSONL and Postgres.
type teeStorage struct {
	ctx   context.Context
	jsonl storage.Storage
	pg    *postgres.Store
}

func (t *teeStorage) PutEventBatch(events []model.EventRecord) error {
	if err := t.jsonl.PutEventBatch(events); err != nil {
		return err
	}
	return t.pg.UpsertEvents(t.ctx, events)
}
