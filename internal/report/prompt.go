package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/station-insight-cli/internal/model"
	"github.com/sells-group/station-insight-cli/internal/parcel"
)

// systemPrompt frames the model as a Korean urban-siting consultant; the
// report vocabulary downstream (buckets, phrasing) is Korean throughout.
const systemPrompt = "도시 입지 분석을 수행하는 한국어 컨설턴트입니다."

// stationDetailKeys is the fixed priority order of station attributes worth
// surfacing in the prompt. Only non-empty values are rendered.
var stationDetailKeys = []string{
	"상호",
	"주소",
	"지번주소",
	"용도지역",
	"지목",
	"대지면적",
	"연면적",
	"주용도",
	"준공일자",
	"폐업일자",
}

// maxPromptRecommendations caps the recommendation lines in the prompt.
const maxPromptRecommendations = 5

// buildUserPrompt assembles the full analysis request sent to the LLM. The
// instruction pins the response to a bare JSON object with summary/insights/
// actions keys.
func buildUserPrompt(station model.Station, recs []model.Recommendation, summary *parcel.Summary, stationID *int) string {
	ref := station.Name()
	if ref == "" {
		ref = "해당 주유소"
	}
	identifier := ref
	if stationID != nil {
		identifier = fmt.Sprintf("ID %d - %s", *stationID, ref)
	}

	var b strings.Builder
	b.WriteString("당신은 도시 재생 및 부동산 활용 전략을 제시하는 컨설턴트입니다. 아래 주유소 정보를 분석하여 ")
	b.WriteString("입지 특성 요약(2~3문장), 인사이트 3개, 권장 실행 항목 3개를 JSON으로만 응답하세요.\n")
	b.WriteString("JSON 키는 summary(문장), insights(문장 리스트), actions(문장 리스트)입니다.\n")
	b.WriteString("모든 문장은 한국어 비즈니스 보고서 어투로 작성하고, 다른 설명이나 마크다운은 포함하지 마세요.\n\n")
	b.WriteString("[대상 주유소] " + identifier + "\n")
	b.WriteString("[주유소 정보]\n" + summarizeStation(station) + "\n\n")
	b.WriteString("[추천 활용 방안]\n" + summarizeRecommendations(recs) + "\n")
	b.WriteString("[반경 300m 필지 통계]\n" + formatParcelSummary(summary) + "\n")
	return b.String()
}

// summarizeStation renders the station's key attributes as one compact
// "key: value | ..." line.
func summarizeStation(station model.Station) string {
	var parts []string
	for _, key := range stationDetailKeys {
		if v, ok := station[key]; ok {
			if s := model.Stringify(v); s != "" {
				parts = append(parts, key+": "+s)
			}
		}
	}

	if lat, lng, ok := station.Coords(); ok {
		parts = append(parts, fmt.Sprintf("위치: 위도 %v, 경도 %v", trimFloat(lat), trimFloat(lng)))
	}

	if len(parts) == 0 {
		return "제공된 세부 정보가 거의 없습니다."
	}
	return strings.Join(parts, " | ")
}

func trimFloat(f float64) string {
	return model.Stringify(f)
}

// summarizeRecommendations renders one line per recommendation, capped at
// maxPromptRecommendations.
func summarizeRecommendations(recs []model.Recommendation) string {
	if len(recs) == 0 {
		return "추천 결과 없음"
	}

	var lines []string
	for _, rec := range recs {
		usage := rec.Usage()
		if usage == "" {
			usage = "미정"
		}
		line := usage
		if rec.Score != nil {
			if f, ok := rec.ScoreValue(); ok {
				line += fmt.Sprintf(" (점수: %.3f)", f)
			} else {
				line += fmt.Sprintf(" (점수: %s)", model.Stringify(rec.Score))
			}
		}
		if rec.Description != "" {
			line += " - " + rec.Description
		}
		lines = append(lines, line)
	}

	if len(lines) > maxPromptRecommendations {
		lines = lines[:maxPromptRecommendations]
	}
	return strings.Join(lines, "\n")
}

// formatParcelSummary renders the parcel statistics for the prompt. The
// bucket and phrase vocabulary is shared with the fallback generator so LLM
// and fallback output stay stylistically consistent.
func formatParcelSummary(summary *parcel.Summary) string {
	if summary == nil {
		return "반경 내 필지 데이터가 충분하지 않습니다."
	}

	lines := []string{
		fmt.Sprintf("총 %d개 필지, 평균 면적 약 %.0f㎡", summary.TotalCount, summary.AverageArea),
	}

	if bucketLine := formatBuckets(summary.BucketCounts); bucketLine != "" {
		lines = append(lines, "면적 분포: "+bucketLine)
	}

	var uses []string
	for _, lu := range summary.TopLandUses {
		if lu.Use != "" {
			uses = append(uses, fmt.Sprintf("%s %d개", lu.Use, lu.Count))
		}
	}
	if len(uses) > 0 {
		lines = append(lines, "주요 지목: "+strings.Join(uses, ", "))
	}

	if summary.Closest != nil && summary.Closest.DistanceM > 0 {
		label := summary.Closest.Label
		if label == "" {
			label = "가장 인접 필지"
		}
		lines = append(lines, fmt.Sprintf("지도 중심과 %.0fm 거리의 %s", summary.Closest.DistanceM, label))
	}

	return strings.Join(lines, "\n")
}

// formatBuckets renders non-zero bucket counts in size order.
func formatBuckets(counts map[string]int) string {
	var parts []string
	for _, bucket := range parcel.BucketOrder {
		if counts[bucket] > 0 {
			parts = append(parts, fmt.Sprintf("%s %d개", bucket, counts[bucket]))
		}
	}
	return strings.Join(parts, ", ")
}
