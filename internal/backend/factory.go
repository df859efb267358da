package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/source"
	"tally/internal/source/google"
	"tally/internal/source/memory"
	"tally/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new provider factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateProvider implements Factory.CreateProvider
func (f *DefaultFactory) CreateProvider(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryProvider(config), nil
	case SQLiteBackend:
		return f.createSQLiteProvider(config)
	case SheetsBackend:
		return f.createSheetsProvider(ctx, config)
	case MultiBackend:
		return f.createMultiProvider(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryProvider(config Config) *Result {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory provider", "data_directory", dataDir)
	return &Result{Provider: store}
}

func (f *DefaultFactory) createSQLiteProvider(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite provider", "db_path", config.SQLiteDBPath)
	return &Result{Provider: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsProvider(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.NewFromConfig(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsFile: config.GoogleServiceAccountFile,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CacheTTL:        config.SheetsCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets provider", "sheet", config.GoogleSheetName)
	return &Result{Provider: cli}, nil
}

// createMultiProvider merges the memory seed with the SQLite store.
func (f *DefaultFactory) createMultiProvider(config Config) (*Result, error) {
	mem := f.createMemoryProvider(config)
	db, err := f.createSQLiteProvider(config)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Initialized multi provider", "sources", []string{MemoryBackend.String(), SQLiteBackend.String()})
	return &Result{
		Provider: source.Multi(mem.Provider, db.Provider),
		Cleanup: func() error {
			return errors.Join(mem.Close(), db.Close())
		},
	}, nil
}
