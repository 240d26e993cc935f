package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "station-insight",
	Short: "Site-utilization reports for decommissioned gas stations",
	Long:  "Serves geolocated records of decommissioned fuel-retail sites and synthesizes per-site utilization reports from parcel proximity statistics, ranked reuse recommendations, and an LLM narrative with a deterministic fallback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
