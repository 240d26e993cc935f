// Package report synthesizes site-utilization reports from parcel
// statistics, ranked recommendations, and a routed LLM call with a
// deterministic offline fallback.
package report

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/config"
)

// RouteConfig is the effective LLM call configuration after routing
// resolution. TimeoutSecs keeps the configured unit; the engine converts it
// to a duration at call time.
type RouteConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	TimeoutSecs float64
	ForceJSON   bool
	Temperature float64
}

// RoutingTable maps a stringified station ID (or the "*"/"default"/"DEFAULT"
// sentinels) to a partial RouteConfig override. Loaded once at engine
// construction; read-only afterward.
type RoutingTable map[string]map[string]any

// LoadRoutingTable parses the routing table from the inline JSON blob,
// falling back to the routing file. Malformed input is skipped with a logged
// diagnostic, never fatal: a broken table just means every station uses the
// defaults.
func LoadRoutingTable(cfg config.LLMConfig) RoutingTable {
	var raw map[string]any

	if cfg.RoutingTable != "" {
		if err := json.Unmarshal([]byte(cfg.RoutingTable), &raw); err != nil {
			zap.L().Warn("report: routing table parse failed", zap.Error(err))
			raw = nil
		}
	}

	if raw == nil && cfg.RoutingFile != "" {
		data, err := os.ReadFile(cfg.RoutingFile)
		if err != nil {
			zap.L().Warn("report: routing file read failed",
				zap.String("path", cfg.RoutingFile), zap.Error(err))
		} else if err := json.Unmarshal(data, &raw); err != nil {
			zap.L().Warn("report: routing file parse failed",
				zap.String("path", cfg.RoutingFile), zap.Error(err))
		}
	}

	if len(raw) == 0 {
		return nil
	}

	table := make(RoutingTable, len(raw))
	for key, value := range raw {
		entry, ok := value.(map[string]any)
		if !ok {
			zap.L().Warn("report: skipping non-object routing entry", zap.String("key", key))
			continue
		}
		table[key] = entry
	}
	return table
}

// Resolve merges a station's routing entry over the global defaults.
// Lookup order: exact stringified ID, then "*", "default", "DEFAULT". An
// empty entry counts as absent and falls through to the next candidate.
// With no match (or no table) the defaults are returned verbatim.
func (t RoutingTable) Resolve(defaults RouteConfig, stationID *int) RouteConfig {
	merged := defaults
	if len(t) == 0 {
		return merged
	}

	var entry map[string]any
	if stationID != nil {
		if e := t[strconv.Itoa(*stationID)]; len(e) > 0 {
			entry = e
		}
	}
	if entry == nil {
		for _, key := range []string{"*", "default", "DEFAULT"} {
			if e := t[key]; len(e) > 0 {
				entry = e
				break
			}
		}
	}
	if entry == nil {
		return merged
	}

	for key, value := range entry {
		switch key {
		case "api_key":
			if s := asString(value); s != "" {
				merged.APIKey = s
			}
		case "base_url":
			if s := asString(value); s != "" {
				merged.BaseURL = s
			}
		case "model":
			if s := asString(value); s != "" {
				merged.Model = s
			}
		case "timeout":
			if f, ok := asFloat(value); ok {
				merged.TimeoutSecs = f
			}
		case "temperature":
			if f, ok := asFloat(value); ok {
				merged.Temperature = f
			}
		case "force_json":
			merged.ForceJSON = asBool(value)
		}
		// Unrecognized keys are ignored.
	}
	return merged
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat parses numeric override values; ok is false for anything that
// fails to parse (the default is then retained).
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asBool accepts a fixed truthy/falsy token set; unrecognized or absent
// values default to false.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "1", "yes":
			return true
		}
		return false
	case float64:
		return t == 1
	default:
		return false
	}
}
