package report

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/station-insight-cli/internal/config"
	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
	"github.com/sells-group/station-insight-cli/pkg/llm"
)

// stubClient returns a canned response or error and records the last call.
type stubClient struct {
	resp  *llm.ChatCompletionResponse
	err   error
	calls int
	last  llm.Call
}

func (s *stubClient) ChatCompletion(_ context.Context, call llm.Call) (*llm.ChatCompletionResponse, error) {
	s.calls++
	s.last = call
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func chatResponse(content string) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		ID: "chatcmpl-test",
		Choices: []llm.Choice{
			{Message: llm.Message{Role: "assistant", Content: content}},
		},
	}
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		APIKey:      "sk-test",
		BaseURL:     "https://llm.test/v1/chat/completions",
		Model:       "gpt-4o-mini",
		TimeoutSecs: 30,
		ForceJSON:   true,
		Temperature: 0.3,
	}
}

func testStation() model.Station {
	return model.Station{
		"id": float64(42),
		"상호": "서울제일주유소",
		"주소": "서울특별시 관악구",
		"위도": float64(37.48),
		"경도": float64(126.95),
	}
}

func testRecommendations() []model.Recommendation {
	return []model.Recommendation{
		{Type: "근린생활시설", Score: 0.92, Description: "생활 편의 수요가 높은 입지"},
		{Type: "공동주택", Score: 0.85},
	}
}

func TestGenerateReportUsesLLMResponse(t *testing.T) {
	client := &stubClient{resp: chatResponse(
		`{"summary":"요약 문장입니다.","insights":["인사이트 1"],"actions":["실행 1"]}`)}
	engine := NewEngine(testLLMConfig(), client)

	rep, fromLLM := engine.GenerateReport(context.Background(), testStation(), testRecommendations(), nil, intPtr(42))

	assert.True(t, fromLLM)
	assert.Equal(t, "요약 문장입니다.", rep.Summary)
	assert.Equal(t, []string{"인사이트 1"}, rep.Insights)
	assert.Equal(t, []string{"실행 1"}, rep.Actions)
	assert.Equal(t, 1, client.calls)
}

func TestGenerateReportCallShape(t *testing.T) {
	client := &stubClient{resp: chatResponse(`{"summary":"ok"}`)}
	engine := NewEngine(testLLMConfig(), client)

	_, fromLLM := engine.GenerateReport(context.Background(), testStation(), testRecommendations(), nil, intPtr(42))
	require.True(t, fromLLM)

	call := client.last
	assert.Equal(t, "https://llm.test/v1/chat/completions", call.URL)
	assert.Equal(t, "sk-test", call.APIKey)
	assert.Equal(t, "gpt-4o-mini", call.Request.Model)
	require.Len(t, call.Request.Messages, 2)
	assert.Equal(t, "system", call.Request.Messages[0].Role)
	assert.Equal(t, systemPrompt, call.Request.Messages[0].Content)
	assert.Contains(t, call.Request.Messages[1].Content, "ID 42 - 서울제일주유소")
	require.NotNil(t, call.Request.ResponseFormat)
	assert.Equal(t, "json_object", call.Request.ResponseFormat.Type)
	require.NotNil(t, call.Request.Temperature)
	assert.Equal(t, 0.3, *call.Request.Temperature)
}

func TestGenerateReportNoCredentialSkipsCall(t *testing.T) {
	cfg := testLLMConfig()
	cfg.APIKey = ""
	client := &stubClient{resp: chatResponse(`{"summary":"ok"}`)}
	engine := NewEngine(cfg, client)

	rep, fromLLM := engine.GenerateReport(context.Background(), testStation(), testRecommendations(), nil, intPtr(42))

	assert.False(t, fromLLM)
	assert.Zero(t, client.calls)
	assert.NotEmpty(t, rep.Summary)
}

func TestGenerateReportFallsBackOnFailure(t *testing.T) {
	station := testStation()
	recs := testRecommendations()

	tests := []struct {
		name   string
		client *stubClient
	}{
		{name: "transport error", client: &stubClient{err: eris.New("llm: send request: timeout")}},
		{name: "empty choices", client: &stubClient{resp: &llm.ChatCompletionResponse{}}},
		{name: "empty content", client: &stubClient{resp: chatResponse("   ")}},
		{name: "non-json content", client: &stubClient{resp: chatResponse("분석 결과는 다음과 같습니다.")}},
		{name: "all fields empty", client: &stubClient{resp: chatResponse(`{"summary":"","insights":[],"actions":[]}`)}},
	}

	expected := fallbackReport(station, recs, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(testLLMConfig(), tt.client)

			rep, fromLLM := engine.GenerateReport(context.Background(), station, recs, nil, intPtr(42))
			assert.False(t, fromLLM)
			assert.Equal(t, expected, rep)
		})
	}
}

func TestFallbackReportDeterministic(t *testing.T) {
	station := testStation()
	recs := testRecommendations()
	summary := &parcel.Summary{
		TotalCount:   12,
		TotalArea:    9600,
		AverageArea:  800,
		BucketCounts: map[string]int{parcel.BucketMedium: 8, parcel.BucketLarge: 4},
		TopLandUses:  []parcel.LandUseCount{{Use: "대", Count: 7}},
		Closest:      &parcel.ClosestParcel{DistanceM: 42.5, Label: "101-1"},
	}

	first := fallbackReport(station, recs, summary)
	second := fallbackReport(station, recs, summary)
	assert.Equal(t, first, second)

	// The top recommendation surfaces as the leading insight, followed by the
	// fixed statements.
	require.Len(t, first.Insights, 4)
	assert.Contains(t, first.Insights[0], "근린생활시설")
	assert.Equal(t, fallbackInsights, first.Insights[1:])
	assert.Equal(t, fallbackActions, first.Actions)

	assert.Contains(t, first.Summary, "서울제일주유소")
	assert.Contains(t, first.Summary, "필지 12개")
	assert.Contains(t, first.Summary, "중형 8개")
}

func TestFallbackReportMinimalStation(t *testing.T) {
	rep := fallbackReport(model.Station{}, nil, nil)

	assert.Contains(t, rep.Summary, "해당 주유소")
	assert.Contains(t, rep.Summary, "정보 없음")
	assert.Equal(t, fallbackInsights, rep.Insights)
	assert.Equal(t, fallbackActions, rep.Actions)
}

func TestParseReportJSON(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected model.Report
		ok       bool
	}{
		{
			name:     "plain object",
			content:  `{"summary":"s","insights":["a","b"],"actions":["c"]}`,
			expected: model.Report{Summary: "s", Insights: []string{"a", "b"}, Actions: []string{"c"}},
			ok:       true,
		},
		{
			name:     "fenced with language tag",
			content:  "```json\n{\"summary\":\"s\"}\n```",
			expected: model.Report{Summary: "s"},
			ok:       true,
		},
		{
			name:     "fenced without language tag",
			content:  "```\n{\"summary\":\"s\"}\n```",
			expected: model.Report{Summary: "s"},
			ok:       true,
		},
		{
			name:     "non-string list items stringified",
			content:  `{"summary":"s","insights":[1,"  b  ",""]}`,
			expected: model.Report{Summary: "s", Insights: []string{"1", "b"}},
			ok:       true,
		},
		{name: "not json", content: "그냥 문장입니다"},
		{name: "all empty", content: `{"summary":" ","insights":[],"actions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseReportJSON(tt.content)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestEngineRoutingOverridesModel(t *testing.T) {
	cfg := testLLMConfig()
	cfg.RoutingTable = `{"42":{"model":"gpt-4o"},"*":{"model":"gpt-4o-mini"}}`
	client := &stubClient{resp: chatResponse(`{"summary":"ok"}`)}
	engine := NewEngine(cfg, client)

	_, fromLLM := engine.GenerateReport(context.Background(), testStation(), nil, nil, intPtr(42))
	require.True(t, fromLLM)
	assert.Equal(t, "gpt-4o", client.last.Request.Model)

	_, fromLLM = engine.GenerateReport(context.Background(), testStation(), nil, nil, intPtr(7))
	require.True(t, fromLLM)
	assert.Equal(t, "gpt-4o-mini", client.last.Request.Model)
}
