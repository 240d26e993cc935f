package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/parcel"
	"github.com/sells-group/station-insight-cli/internal/recommend"
	"github.com/sells-group/station-insight-cli/internal/report"
	"github.com/sells-group/station-insight-cli/internal/station"
	"github.com/sells-group/station-insight-cli/internal/store"
	"github.com/sells-group/station-insight-cli/pkg/llm"
)

// services holds the long-lived components shared by the serve and report
// commands. Constructed once per process; all fields are read-mostly.
type services struct {
	Stations    *station.Store
	Parcels     *parcel.Repository
	Recommender recommend.Recommender
	Engine      *report.Engine
	History     *store.History
}

// initServices constructs the service graph from the loaded configuration.
// The station dataset must load; everything else degrades (missing parcel
// data, absent LLM credential, unreachable recommender) per the fallback
// contract.
func initServices(ctx context.Context) (*services, error) {
	stations := station.NewStore(cfg.Station.IDColumn)
	if err := stations.Load(cfg.Station.DataPath); err != nil {
		return nil, eris.Wrap(err, "init: load station dataset")
	}

	var recommender recommend.Recommender
	if cfg.Recommend.BaseURL != "" {
		recommender = recommend.NewHTTPClient(cfg.Recommend.BaseURL,
			time.Duration(cfg.Recommend.TimeoutSecs)*time.Second)
	} else {
		recommender = recommend.Static{}
	}

	history, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init: open report history")
	}
	if err := history.Migrate(ctx); err != nil {
		history.Close()
		return nil, eris.Wrap(err, "init: migrate report history")
	}

	var llmOpts []llm.Option
	if cfg.LLM.RPS > 0 {
		llmOpts = append(llmOpts, llm.WithRateLimit(cfg.LLM.RPS))
	}

	return &services{
		Stations:    stations,
		Parcels:     parcel.NewRepository(cfg.Parcel.BaseDir),
		Recommender: recommender,
		Engine:      report.NewEngine(cfg.LLM, llm.NewClient(llmOpts...)),
		History:     history,
	}, nil
}

// Close releases the services' resources.
func (s *services) Close() {
	if s.History != nil {
		if err := s.History.Close(); err != nil {
			zap.L().Warn("close report history", zap.Error(err))
		}
	}
}
