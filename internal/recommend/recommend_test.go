package recommend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRecommend(t *testing.T) {
	tests := []struct {
		name     string
		topK     int
		expected int
	}{
		{name: "all cases", topK: 0, expected: len(Cases)},
		{name: "capped", topK: 3, expected: 3},
		{name: "over catalog size", topK: 99, expected: len(Cases)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Static{}.Recommend(context.Background(), "무관한 질의", tt.topK)
			require.NoError(t, err)
			require.Len(t, out, tt.expected)
			assert.Equal(t, "근린생활시설", out[0].Type)
			assert.NotEmpty(t, out[0].Description)
		})
	}
}

func TestHTTPClientRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommend", r.URL.Path)
		assert.Equal(t, "서울특별시 관악구", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("top_k"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"type":"근린생활시설","score":0.92},{"type":"공동주택","score":0.81}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	out, err := client.Recommend(context.Background(), "서울특별시 관악구", 3)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "근린생활시설", out[0].Type)
	f, ok := out[0].ScoreValue()
	require.True(t, ok)
	assert.Equal(t, 0.92, f)
}

func TestHTTPClientRecommendErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewHTTPClient(srv.URL, 5*time.Second)
			_, err := client.Recommend(context.Background(), "질의", 3)
			assert.Error(t, err)
		})
	}
}
