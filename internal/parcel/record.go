// Package parcel loads region-partitioned cadastral (land-lot) datasets and
// computes proximity statistics around a point.
package parcel

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// MetersPerDegree is the linear degrees-to-meters conversion factor used for
// every area and distance figure this package reports. It is a local
// approximation, not a geodesic one; the service trades projection accuracy
// for descriptive, survey-free output, so all computations must share this
// single constant.
const MetersPerDegree = 111000.0

// Label key probe order: lot number identifiers as published in Korean
// cadastral shapefiles.
var labelKeys = []string{"JIBUN", "PNU", "LOTNO", "BUNJI"}

// Land-use key probe order. Checked first-match; the Korean headers appear
// in datasets that were re-exported from domestic GIS tools.
var landUseKeys = []string{
	"JIMOK",
	"JIGU",
	"USEDSGN",
	"USE",
	"LAND_USE",
	"ZONING",
	"지목",
	"용도지역",
}

// Record is a single parcel: a polygon plus its open attribute mapping.
// Geom may be nil for records whose shape could not be decoded; such records
// are excluded from every aggregate computation.
type Record struct {
	Geom  *geom.Polygon
	Attrs map[string]any
}

// Label returns the parcel's lot identifier, or "" when none is present.
func (r Record) Label() string {
	return r.probe(labelKeys)
}

// LandUse returns the parcel's land-use classification, or "" when none of
// the candidate attribute keys carries a value.
func (r Record) LandUse() string {
	return r.probe(landUseKeys)
}

func (r Record) probe(keys []string) string {
	for _, key := range keys {
		if v, ok := r.Attrs[key]; ok {
			if s := model.Stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Dataset holds one region's parcels. Immutable after load: the repository
// caches datasets for the process lifetime and never mutates them.
type Dataset struct {
	Region  string
	CRS     string
	Records []Record
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}
