package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tlog "tally/internal/log"
	"tally/internal/source/memory"
	"tally/internal/storage"
)

func importCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Import a seed CSV (date,name,amount,category[,id]) into SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			exps, err := memory.ReadSeed(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			if dbPath == "" {
				dbPath = cfg.SQLiteDBPath
			}
			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.Import(cmd.Context(), exps)
			if err != nil {
				return err
			}
			logger.Info("Imported expenses",
				tlog.FieldOperation, tlog.OpImport,
				tlog.FieldCount, n,
				"db", dbPath)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d expenses into %s\n", n, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
	return cmd
}
