package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/station-insight-cli/internal/station"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Inspect the station dataset",
}

var stationsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configured dataset and report its row count",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := station.NewStore(cfg.Station.IDColumn)
		if err := st.Load(cfg.Station.DataPath); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"path":     cfg.Station.DataPath,
			"stations": st.Count(),
		})
	},
}

var searchLimit int

var stationsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stations by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := station.NewStore(cfg.Station.IDColumn)
		if err := st.Load(cfg.Station.DataPath); err != nil {
			return err
		}

		matched := st.SearchByName(args[0], searchLimit)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(station.ToFeatureCollection(matched))
	},
}

func init() {
	stationsSearchCmd.Flags().IntVar(&searchLimit, "limit", 100, "max results")
	stationsCmd.AddCommand(stationsCheckCmd, stationsSearchCmd)
	rootCmd.AddCommand(stationsCmd)
}
