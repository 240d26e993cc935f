package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
	"github.com/sells-group/station-insight-cli/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report <station-id>",
	Short: "Generate a site-utilization report for one station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrapf(err, "invalid station id %q", args[0])
		}

		ctx := cmd.Context()
		svc, err := initServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		st, ok := svc.Stations.GetByID(id)
		if !ok {
			return eris.Errorf("station %d not found", id)
		}

		var recs []model.Recommendation
		recs, err = svc.Recommender.Recommend(ctx, st.Address(), cfg.Recommend.TopK)
		if err != nil {
			zap.L().Warn("recommendation lookup failed", zap.Error(err))
			recs = nil
		}

		var summary *parcel.Summary
		if lat, lng, ok := st.Coords(); ok {
			pt := parcel.Point{Lat: lat, Lng: lng}
			summary = parcel.SummarizeNearby(svc.Parcels.Nearby(pt, cfg.Parcel.RadiusDegrees), pt)
		}

		rep, fromLLM := svc.Engine.GenerateReport(ctx, st, recs, summary, &id)

		source := store.SourceFallback
		if fromLLM {
			source = store.SourceLLM
		}
		if err := svc.History.Record(ctx, id, source, rep); err != nil {
			zap.L().Warn("report history write failed", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"station_id":     id,
			"source":         source,
			"parcel_summary": summary,
			"report":         rep,
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
