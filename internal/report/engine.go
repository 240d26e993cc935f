package report

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/station-insight-cli/internal/config"
	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
	"github.com/sells-group/station-insight-cli/pkg/llm"
)

// Engine synthesizes site-utilization reports. It holds only read-only state
// (defaults and routing table), so one engine serves all requests.
type Engine struct {
	defaults RouteConfig
	routes   RoutingTable
	client   llm.Client
}

// NewEngine builds an engine from the LLM configuration. The routing table
// is resolved once here; malformed tables degrade to defaults-only routing.
func NewEngine(cfg config.LLMConfig, client llm.Client) *Engine {
	if client == nil {
		client = llm.NewClient()
	}
	return &Engine{
		defaults: RouteConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			TimeoutSecs: cfg.TimeoutSecs,
			ForceJSON:   cfg.ForceJSON,
			Temperature: cfg.Temperature,
		},
		routes: LoadRoutingTable(cfg),
		client: client,
	}
}

// remoteResult tags the outcome of the remote stage: a usable report, or
// unavailable with a reason. The fallback stage runs whenever ok is false.
type remoteResult struct {
	report model.Report
	ok     bool
	reason string
}

// GenerateReport produces the report for one station. fromLLM reports which
// stage produced it. Every externally caused failure (missing credential,
// transport, timeout, unparseable response) degrades to the deterministic
// fallback; the operation never returns an error for data-availability
// reasons.
func (e *Engine) GenerateReport(ctx context.Context, station model.Station, recs []model.Recommendation, summary *parcel.Summary, stationID *int) (rep model.Report, fromLLM bool) {
	route := e.routes.Resolve(e.defaults, stationID)

	result := e.tryRemote(ctx, route, station, recs, summary, stationID)
	if result.ok {
		return result.report, true
	}

	zap.L().Info("report: using deterministic fallback",
		zap.String("reason", result.reason))
	return fallbackReport(station, recs, summary), false
}

// tryRemote runs the single remote attempt. One call, no retries: the
// fallback already provides a usable result.
func (e *Engine) tryRemote(ctx context.Context, route RouteConfig, station model.Station, recs []model.Recommendation, summary *parcel.Summary, stationID *int) remoteResult {
	if route.APIKey == "" {
		// Expected absence, not an error: offline deployments run
		// fallback-only.
		return remoteResult{reason: "no credential configured"}
	}

	req := llm.ChatCompletionRequest{
		Model: route.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(station, recs, summary, stationID)},
		},
		Temperature: &route.Temperature,
	}
	if route.ForceJSON {
		req.ResponseFormat = &llm.ResponseFormat{Type: "json_object"}
	}

	resp, err := e.client.ChatCompletion(ctx, llm.Call{
		URL:     route.BaseURL,
		APIKey:  route.APIKey,
		Timeout: time.Duration(route.TimeoutSecs * float64(time.Second)),
		Request: req,
	})
	if err != nil {
		zap.L().Warn("report: llm call failed", zap.Error(err))
		return remoteResult{reason: "llm call failed"}
	}

	if len(resp.Choices) == 0 {
		return remoteResult{reason: "empty choices"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return remoteResult{reason: "empty content"}
	}

	parsed, ok := parseReportJSON(content)
	if !ok {
		zap.L().Warn("report: unusable llm response", zap.Int("content_len", len(content)))
		return remoteResult{reason: "unusable response"}
	}
	return remoteResult{report: parsed, ok: true}
}

// parseReportJSON parses the model's response into a Report, tolerating a
// fenced code-block wrapper with an optional language tag. ok is false when
// the JSON does not parse or all three fields are empty.
func parseReportJSON(content string) (model.Report, bool) {
	cleaned := stripFences(content)

	var raw struct {
		Summary  string `json:"summary"`
		Insights []any  `json:"insights"`
		Actions  []any  `json:"actions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.Report{}, false
	}

	report := model.Report{
		Summary:  strings.TrimSpace(raw.Summary),
		Insights: cleanStrings(raw.Insights),
		Actions:  cleanStrings(raw.Actions),
	}
	if report.Summary == "" && len(report.Insights) == 0 && len(report.Actions) == 0 {
		return model.Report{}, false
	}
	return report, true
}

// stripFences removes a leading/trailing ``` fence and an optional language
// tag from the response body.
func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimPrefix(cleaned, "json")
	return strings.TrimSpace(cleaned)
}

// cleanStrings keeps the non-empty string items, trimmed.
func cleanStrings(items []any) []string {
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			s = model.Stringify(item)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
