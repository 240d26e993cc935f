package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/station-insight-cli/internal/parcel"
)

var parcelCmd = &cobra.Command{
	Use:   "parcel",
	Short: "Manage cadastral parcel datasets",
}

var parcelStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show parcel repository state",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := parcel.NewRepository(cfg.Parcel.BaseDir)
		repo.EnsureLoaded()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"base_dir":   cfg.Parcel.BaseDir,
			"loaded":     repo.IsLoaded(),
			"regions":    repo.Regions(),
			"last_error": repo.LastError(),
		})
	},
}

var parcelLoadCmd = &cobra.Command{
	Use:   "load <region-code>",
	Short: "Load one region's parcel dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := parcel.NewRepository(cfg.Parcel.BaseDir)
		ds, err := repo.LoadRegion(args[0])
		if err != nil {
			return err
		}
		zap.L().Info("region loaded",
			zap.String("region", ds.Region),
			zap.String("crs", ds.CRS),
			zap.Int("records", len(ds.Records)),
		)
		return nil
	},
}

var warmConcurrency int

var parcelWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-load every available region dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := os.ReadDir(cfg.Parcel.BaseDir)
		if err != nil {
			return err
		}

		repo := parcel.NewRepository(cfg.Parcel.BaseDir)
		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(warmConcurrency)

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			region := entry.Name()
			g.Go(func() error {
				if _, err := repo.LoadRegion(region); err != nil {
					// Warm is best-effort; a bad region is logged, not fatal.
					zap.L().Warn("warm load failed", zap.String("region", region), zap.Error(err))
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		zap.L().Info("warm complete", zap.Strings("regions", repo.Regions()))
		return nil
	},
}

func init() {
	parcelWarmCmd.Flags().IntVar(&warmConcurrency, "concurrency", 4, "max concurrent region loads")
	parcelCmd.AddCommand(parcelStatusCmd, parcelLoadCmd, parcelWarmCmd)
	rootCmd.AddCommand(parcelCmd)
}
