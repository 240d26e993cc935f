package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// HTTPClient calls an external recommendation-ranking service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the ranking service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Recommend queries GET {base}/recommend?query=...&top_k=N and returns the
// ranked items.
func (c *HTTPClient) Recommend(ctx context.Context, query string, topK int) ([]model.Recommendation, error) {
	u := fmt.Sprintf("%s/recommend?query=%s&top_k=%s",
		c.baseURL, url.QueryEscape(query), strconv.Itoa(topK))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("recommend: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Items []model.Recommendation `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "recommend: unmarshal response")
	}
	return result.Items, nil
}
