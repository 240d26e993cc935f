package parcel

import "math"

// Area buckets, in squared meters. Lower bounds are inclusive of the next
// bucket up: exactly 300㎡ is 중형, exactly 3000㎡ is 초대형.
const (
	BucketSmall      = "소형"
	BucketMedium     = "중형"
	BucketLarge      = "대형"
	BucketExtraLarge = "초대형"
)

// BucketOrder lists the buckets from smallest to largest for stable rendering.
var BucketOrder = []string{BucketSmall, BucketMedium, BucketLarge, BucketExtraLarge}

// ClassifyArea assigns an area in square meters to its size bucket.
func ClassifyArea(areaM2 float64) string {
	switch {
	case areaM2 < 300:
		return BucketSmall
	case areaM2 < 1000:
		return BucketMedium
	case areaM2 < 3000:
		return BucketLarge
	default:
		return BucketExtraLarge
	}
}

// LandUseCount is one land-use tally entry.
type LandUseCount struct {
	Use   string `json:"use"`
	Count int    `json:"count"`
}

// ClosestParcel identifies the parcel whose centroid lies nearest the query
// point.
type ClosestParcel struct {
	DistanceM float64 `json:"distance_m"`
	Label     string  `json:"label,omitempty"`
}

// Summary aggregates the parcels found within the query radius.
type Summary struct {
	TotalCount   int            `json:"total_count"`
	TotalArea    float64        `json:"total_area"`
	AverageArea  float64        `json:"average_area"`
	BucketCounts map[string]int `json:"bucket_counts"`
	TopLandUses  []LandUseCount `json:"top_land_uses"`
	Closest      *ClosestParcel `json:"closest,omitempty"`
}

// SummarizeNearby reduces the records around a point to a compact summary.
// Records without geometry contribute nothing; a record whose area or
// centroid computation fails is skipped for that metric only. Returns nil
// when no record contributed a valid area measurement.
func SummarizeNearby(records []Record, pt Point) *Summary {
	bucketCounts := make(map[string]int)
	landUseCounts := make(map[string]int)
	var landUseOrder []string
	var totalArea float64
	var totalCount int
	var closest *ClosestParcel
	closestDist := math.Inf(1)

	for _, rec := range records {
		if rec.Geom == nil {
			continue
		}

		areaM2 := math.Abs(rec.Geom.Area()) * MetersPerDegree * MetersPerDegree
		if areaM2 > 0 && !math.IsNaN(areaM2) && !math.IsInf(areaM2, 0) {
			bucketCounts[ClassifyArea(areaM2)]++
			totalArea += areaM2
			totalCount++
		}

		if use := rec.LandUse(); use != "" {
			if _, seen := landUseCounts[use]; !seen {
				landUseOrder = append(landUseOrder, use)
			}
			landUseCounts[use]++
		}

		cx, cy, err := centroid(rec.Geom)
		if err != nil {
			continue
		}
		distM := math.Hypot(cx-pt.Lng, cy-pt.Lat) * MetersPerDegree
		if math.IsNaN(distM) {
			continue
		}
		// First-encountered record wins exact ties.
		if distM < closestDist {
			closestDist = distM
			closest = &ClosestParcel{DistanceM: distM, Label: rec.Label()}
		}
	}

	if totalCount == 0 {
		return nil
	}

	return &Summary{
		TotalCount:   totalCount,
		TotalArea:    totalArea,
		AverageArea:  totalArea / float64(totalCount),
		BucketCounts: bucketCounts,
		TopLandUses:  topLandUses(landUseCounts, landUseOrder, 3),
		Closest:      closest,
	}
}

// topLandUses returns the most frequent land uses, count descending, ties
// broken by first-encountered order, capped at max entries.
func topLandUses(counts map[string]int, order []string, max int) []LandUseCount {
	ranked := make([]LandUseCount, 0, len(order))
	for _, use := range order {
		ranked = append(ranked, LandUseCount{Use: use, Count: counts[use]})
	}
	// Insertion sort keeps the first-encountered order stable on ties.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Count > ranked[j-1].Count; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}
