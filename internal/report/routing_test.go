package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/station-insight-cli/internal/config"
)

func intPtr(v int) *int { return &v }

func TestLoadRoutingTable(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		expected RoutingTable
	}{
		{
			name: "inline table",
			cfg:  config.LLMConfig{RoutingTable: `{"42":{"model":"x"}}`},
			expected: RoutingTable{
				"42": {"model": "x"},
			},
		},
		{
			name:     "empty config",
			cfg:      config.LLMConfig{},
			expected: nil,
		},
		{
			name:     "malformed inline falls through to nothing",
			cfg:      config.LLMConfig{RoutingTable: `{"42":`},
			expected: nil,
		},
		{
			name: "non-object entries skipped",
			cfg:  config.LLMConfig{RoutingTable: `{"42":"oops","43":{"model":"y"}}`},
			expected: RoutingTable{
				"43": {"model": "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LoadRoutingTable(tt.cfg))
		})
	}
}

func TestLoadRoutingTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"*":{"timeout":10}}`), 0o644))

	table := LoadRoutingTable(config.LLMConfig{RoutingFile: path})
	require.NotNil(t, table)
	assert.Equal(t, map[string]any{"timeout": float64(10)}, table["*"])

	// Missing file degrades to no table.
	assert.Nil(t, LoadRoutingTable(config.LLMConfig{RoutingFile: filepath.Join(t.TempDir(), "absent.json")}))
}

func TestResolvePrecedence(t *testing.T) {
	defaults := RouteConfig{Model: "base", TimeoutSecs: 30}
	table := RoutingTable{
		"42": {"model": "x"},
		"*":  {"timeout": float64(10)},
	}

	tests := []struct {
		name      string
		stationID *int
		expected  RouteConfig
	}{
		{
			name:      "exact match wins over wildcard",
			stationID: intPtr(42),
			expected:  RouteConfig{Model: "x", TimeoutSecs: 30},
		},
		{
			name:      "unknown id falls to wildcard",
			stationID: intPtr(7),
			expected:  RouteConfig{Model: "base", TimeoutSecs: 10},
		},
		{
			name:      "nil id falls to wildcard",
			stationID: nil,
			expected:  RouteConfig{Model: "base", TimeoutSecs: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Resolve(defaults, tt.stationID))
		})
	}
}

func TestResolveSentinelOrder(t *testing.T) {
	defaults := RouteConfig{Model: "base"}

	tests := []struct {
		name     string
		table    RoutingTable
		expected string
	}{
		{
			name:     "wildcard before default",
			table:    RoutingTable{"*": {"model": "star"}, "default": {"model": "lower"}},
			expected: "star",
		},
		{
			name:     "lowercase default before uppercase",
			table:    RoutingTable{"default": {"model": "lower"}, "DEFAULT": {"model": "upper"}},
			expected: "lower",
		},
		{
			name:     "uppercase default as last resort",
			table:    RoutingTable{"DEFAULT": {"model": "upper"}},
			expected: "upper",
		},
		{
			name:     "empty exact entry falls through to wildcard",
			table:    RoutingTable{"42": {}, "*": {"model": "star"}},
			expected: "star",
		},
		{
			name:     "empty wildcard falls through to default",
			table:    RoutingTable{"*": {}, "default": {"model": "lower"}},
			expected: "lower",
		},
		{
			name:     "all entries empty keeps defaults",
			table:    RoutingTable{"*": {}, "default": {}, "DEFAULT": {}},
			expected: "base",
		},
		{
			name:     "no match keeps defaults",
			table:    RoutingTable{"7": {"model": "other"}},
			expected: "base",
		},
		{
			name:     "nil table keeps defaults",
			table:    nil,
			expected: "base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.table.Resolve(defaults, intPtr(42))
			assert.Equal(t, tt.expected, got.Model)
		})
	}
}

func TestResolveFieldMerging(t *testing.T) {
	defaults := RouteConfig{
		APIKey:      "default-key",
		BaseURL:     "https://default",
		Model:       "base",
		TimeoutSecs: 30,
		ForceJSON:   true,
		Temperature: 0.3,
	}

	table := RoutingTable{"1": {
		"api_key":     "route-key",
		"base_url":    "https://route",
		"model":       "routed",
		"timeout":     "12.5",
		"temperature": float64(0.7),
		"force_json":  "yes",
		"mystery":     "ignored",
	}}

	got := table.Resolve(defaults, intPtr(1))
	assert.Equal(t, "route-key", got.APIKey)
	assert.Equal(t, "https://route", got.BaseURL)
	assert.Equal(t, "routed", got.Model)
	assert.Equal(t, 12.5, got.TimeoutSecs)
	assert.Equal(t, 0.7, got.Temperature)
	assert.True(t, got.ForceJSON)
}

func TestResolveBadValuesRetainDefaults(t *testing.T) {
	defaults := RouteConfig{Model: "base", TimeoutSecs: 30, Temperature: 0.3}

	table := RoutingTable{"1": {
		"model":       "",
		"timeout":     "not-a-number",
		"temperature": []any{1, 2},
	}}

	got := table.Resolve(defaults, intPtr(1))
	assert.Equal(t, "base", got.Model)
	assert.Equal(t, float64(30), got.TimeoutSecs)
	assert.Equal(t, 0.3, got.Temperature)
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{name: "bool true", value: true, expected: true},
		{name: "bool false", value: false, expected: false},
		{name: "string true", value: "true", expected: true},
		{name: "string TRUE", value: "TRUE", expected: true},
		{name: "string 1", value: "1", expected: true},
		{name: "string yes", value: "yes", expected: true},
		{name: "string no", value: "no", expected: false},
		{name: "string garbage", value: "maybe", expected: false},
		{name: "number one", value: float64(1), expected: true},
		{name: "number zero", value: float64(0), expected: false},
		{name: "nil", value: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, asBool(tt.value))
		})
	}
}
