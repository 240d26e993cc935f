// Package server exposes the station dataset and report synthesis over a
// JSON HTTP API. It is a thin wrapper: all real work happens in the parcel,
// recommend, and report packages.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
	"github.com/sells-group/station-insight-cli/internal/recommend"
	"github.com/sells-group/station-insight-cli/internal/report"
	"github.com/sells-group/station-insight-cli/internal/station"
	"github.com/sells-group/station-insight-cli/internal/store"
)

// Server wires the long-lived services into HTTP handlers. All services are
// read-mostly and shared across requests.
type Server struct {
	stations    *station.Store
	parcels     *parcel.Repository
	recommender recommend.Recommender
	engine      *report.Engine
	history     *store.History
	radiusDeg   float64
	topK        int
}

// New creates the server. history may be nil to disable the audit log.
func New(stations *station.Store, parcels *parcel.Repository, rec recommend.Recommender, engine *report.Engine, history *store.History, radiusDeg float64, topK int) *Server {
	return &Server{
		stations:    stations,
		parcels:     parcels,
		recommender: rec,
		engine:      engine,
		history:     history,
		radiusDeg:   radiusDeg,
		topK:        topK,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/stations", func(r chi.Router) {
		r.Get("/region/{code}", s.handleRegion)
		r.Get("/map", s.handleMap)
		r.Get("/search", s.handleSearch)
		r.Get("/cases", s.handleCases)
		r.Get("/{id}", s.handleDetail)
		r.Get("/{id}/report", s.handleReport)
	})

	return r
}

// requestID attaches a correlation ID to each response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	limit := queryInt(r, "limit", 5000)

	matched := s.stations.SearchRegion(code, limit)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, station.ToFeatureCollection(matched))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	box := station.BBox{
		MinLat: queryFloat(r, "lat1"),
		MinLng: queryFloat(r, "lng1"),
		MaxLat: queryFloat(r, "lat2"),
		MaxLng: queryFloat(r, "lng2"),
	}
	limit := queryInt(r, "limit", 10000)

	items := s.stations.SearchBBox(box, limit)
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	limit := queryInt(r, "limit", 100)

	matched := s.stations.SearchByName(query, limit)
	writeJSON(w, http.StatusOK, station.ToFeatureCollection(matched))
}

func (s *Server) handleCases(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(recommend.Cases),
		"items": recommend.Cases,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	st, ok := s.stations.GetByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, http.StatusOK, st)
}

// reportResponse is the full report payload for one station.
type reportResponse struct {
	Station         model.Station          `json:"station"`
	ParcelSummary   *parcel.Summary        `json:"parcel_summary,omitempty"`
	Recommendations []model.Recommendation `json:"recommendations"`
	Report          model.Report           `json:"report"`
	Source          string                 `json:"source"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	st, ok := s.stations.GetByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	resp := s.synthesize(r.Context(), st, id)
	writeJSON(w, http.StatusOK, resp)
}

// synthesize runs the full report pipeline for one station. Recommendation
// and parcel failures degrade to empty inputs; the engine always returns a
// complete report.
func (s *Server) synthesize(ctx context.Context, st model.Station, id int) reportResponse {
	log := zap.L().With(zap.Int("station_id", id))

	var recs []model.Recommendation
	if s.recommender != nil {
		var err error
		recs, err = s.recommender.Recommend(ctx, st.Address(), s.topK)
		if err != nil {
			log.Warn("recommendation lookup failed", zap.Error(err))
			recs = nil
		}
	}

	var summary *parcel.Summary
	if lat, lng, ok := st.Coords(); ok {
		pt := parcel.Point{Lat: lat, Lng: lng}
		nearby := s.parcels.Nearby(pt, s.radiusDeg)
		summary = parcel.SummarizeNearby(nearby, pt)
	}

	rep, fromLLM := s.engine.GenerateReport(ctx, st, recs, summary, &id)

	source := store.SourceFallback
	if fromLLM {
		source = store.SourceLLM
	}
	if s.history != nil {
		if err := s.history.Record(ctx, id, source, rep); err != nil {
			log.Warn("report history write failed", zap.Error(err))
		}
	}

	return reportResponse{
		Station:         st,
		ParcelSummary:   summary,
		Recommendations: recs,
		Report:          rep,
		Source:          source,
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryFloat(r *http.Request, key string) float64 {
	f, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return f
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
