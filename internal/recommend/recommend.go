// Package recommend consumes the external land-use recommendation component.
// The ranking algorithm itself is an opaque collaborator; this package only
// defines the call surface plus a static catalog used when no ranking
// service is configured.
package recommend

import (
	"context"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// Recommender produces ranked land-use suggestions for a location query.
type Recommender interface {
	Recommend(ctx context.Context, query string, topK int) ([]model.Recommendation, error)
}

// Case is one reuse-case card from the fixed catalog.
type Case struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Cases is the fixed catalog of decommissioned-station reuse cases.
var Cases = []Case{
	{ID: 1, Title: "근린생활시설", Description: "일상생활에 필요한 서비스를 제공하는 시설로 활용", ImageURL: "/assets/cases/convenience.jpg"},
	{ID: 2, Title: "공동주택", Description: "주거 공간으로 재활용하여 주택 공급에 기여", ImageURL: "/assets/cases/housing.jpg"},
	{ID: 3, Title: "자동차관련시설", Description: "전기차 충전소나 정비소로 전환하여 활용", ImageURL: "/assets/cases/automotive.jpg"},
	{ID: 4, Title: "판매시설", Description: "소매점이나 마켓으로 활용하여 지역 상권 활성화", ImageURL: "/assets/cases/retail.jpg"},
	{ID: 5, Title: "업무시설", Description: "코워킹 스페이스나 사무실로 활용", ImageURL: "/assets/cases/office.jpg"},
}

// Static serves the fixed catalog as recommendations, ignoring the query.
// It stands in for the ranking service in offline deployments.
type Static struct{}

// Recommend returns the catalog cases as evenly ranked recommendations.
func (Static) Recommend(_ context.Context, _ string, topK int) ([]model.Recommendation, error) {
	n := len(Cases)
	if topK > 0 && topK < n {
		n = topK
	}
	out := make([]model.Recommendation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Recommendation{
			Type:        Cases[i].Title,
			Description: Cases[i].Description,
		})
	}
	return out, nil
}
