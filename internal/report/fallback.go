package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
)

// Attribute probe orders for the fallback summary sentence.
var (
	fallbackLandUseKeys = []string{"용도지역", "토지용도", "지목"}
	fallbackAreaKeys    = []string{"대지면적", "면적", "AREA"}
)

// fallbackInsights and fallbackActions are the fixed generic statements
// appended to every fallback report.
var fallbackInsights = []string{
	"주변 상권 밀도와 교통 접근성을 정량 분석해 수요 포착 범위를 확장할 필요가 있습니다.",
	"지자체 개발계획 및 도시재생 사업과의 연계를 검토해 정책 수혜 가능성을 확보해야 합니다.",
	"기존 주유소 설비 전환 시 공사 기간·안전관리·환경영향을 체계적으로 관리할 필요가 있습니다.",
}

var fallbackActions = []string{
	"현장 실사를 통해 용도지역·지구단위계획 등 인허가 요건을 세부 확인합니다.",
	"추천 활용 방안 대비 수익성·투자비·수요를 시나리오별로 비교 분석합니다.",
	"지자체 및 인근 이해관계자와의 협력 방안을 마련해 추진 동력을 확보합니다.",
}

// fallbackReport builds the deterministic report used whenever the remote
// path yields nothing usable. Same inputs always produce the same output,
// and construction never fails: missing fields are simply omitted from the
// phrasing.
func fallbackReport(station model.Station, recs []model.Recommendation, summary *parcel.Summary) model.Report {
	name := station.Name()
	if name == "" {
		name = "해당 주유소"
	}
	address := station.Address()
	if address == "" {
		address = "-"
	}
	landUse := station.Probe(fallbackLandUseKeys...)
	if landUse == "" {
		landUse = "정보 없음"
	}
	area := station.Probe(fallbackAreaKeys...)

	parts := []string{
		fmt.Sprintf("%s(%s) 부지에 대한 기초 입지 진단입니다.", name, address),
		fmt.Sprintf("주요 용도지역은 '%s'로 파악되며 주변 토지이용과의 연계를 고려해야 합니다.", landUse),
	}
	if area != "" {
		parts = append(parts, fmt.Sprintf("확인된 대지 면적 정보: %s.", area))
	}
	if phrase := describeParcelSummary(summary); phrase != "" {
		parts = append(parts, phrase)
	}

	var insights []string
	if len(recs) > 0 {
		if topType := recs[0].Usage(); topType != "" {
			insights = append(insights,
				fmt.Sprintf("추천 데이터 상 우선 검토가 필요한 용도는 '%s' 유형입니다.", topType))
		}
	}
	insights = append(insights, fallbackInsights...)

	actions := make([]string, len(fallbackActions))
	copy(actions, fallbackActions)

	return model.Report{
		Summary:  strings.Join(parts, " "),
		Insights: insights,
		Actions:  actions,
	}
}

// describeParcelSummary renders the parcel statistics as report prose, using
// the same bucket vocabulary as the prompt rendering.
func describeParcelSummary(summary *parcel.Summary) string {
	if summary == nil || summary.TotalCount == 0 {
		return ""
	}

	phrases := []string{
		fmt.Sprintf("반경 300m 내 필지 %d개, 평균 면적 약 %.0f㎡가 확인됩니다.",
			summary.TotalCount, summary.AverageArea),
	}

	if bucketLine := formatBuckets(summary.BucketCounts); bucketLine != "" {
		phrases = append(phrases, "면적 분포는 "+bucketLine+" 수준입니다.")
	}

	if len(summary.TopLandUses) > 0 && summary.TopLandUses[0].Use != "" {
		phrases = append(phrases,
			fmt.Sprintf("주요 지목은 '%s' 계열이 두드러집니다.", summary.TopLandUses[0].Use))
	}

	if summary.Closest != nil && summary.Closest.DistanceM > 0 {
		label := summary.Closest.Label
		if label == "" {
			label = "인접 필지"
		}
		phrases = append(phrases,
			fmt.Sprintf("지도 중심과 약 %.0fm 거리에 위치한 %s가 핵심 앵커로 활용될 수 있습니다.",
				summary.Closest.DistanceM, label))
	}

	return strings.Join(phrases, " ")
}
