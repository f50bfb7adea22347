package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/finanza/finanza/internal/config"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
	"github.com/finanza/finanza/internal/storage"
)

// initStorage opens the configured database and brings its schema up to
// date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseAmount reads a positive decimal amount from a command argument.
func parseAmount(arg string) (float64, error) {
	amount, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", arg, err)
	}
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative: %s", arg)
	}
	return amount, nil
}

// parseDateFlag reads a YYYY-MM-DD flag value, defaulting to today when
// empty.
func parseDateFlag(value string) (model.Date, error) {
	if value == "" {
		return model.DateOf(time.Now()), nil
	}
	date, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return date, nil
}
