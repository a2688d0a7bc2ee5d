// Command importlegacy loads the flat JSON files of the earlier library
// service into the store configured by the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/library/backend/config"
	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir   string
		force bool
		tz    string
	)
	cmd := &cobra.Command{
		Use:          "importlegacy",
		Short:        "Import books.json, members.json and transactions.json into the configured store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}
			lg, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer lg.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			res, err := importLegacy(ctx, st, dir, loc, force)
			if err != nil {
				lg.Error("import failed", "dir", dir, "error", err)
				return err
			}
			lg.Info("import complete", "store", cfg.StoreDriver,
				"books", res.Books, "members", res.Members, "transactions", res.Transactions)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data", "directory holding the legacy JSON files")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite collections that already hold records")
	cmd.Flags().StringVar(&tz, "tz", "Local", "time zone of timestamps written without an offset")
	return cmd
}
