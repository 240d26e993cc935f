// Package model defines the core data types shared across the service.
package model

import (
	"strconv"
	"strings"
)

// Station is a decommissioned gas-station record. Source datasets carry an
// open set of columns (Korean cadastral headers mixed with ASCII ones), so
// the record is a plain attribute map with prioritized-key accessors.
type Station map[string]any

// Key probe order for the common station fields. The Korean keys come first
// because the upstream datasets are published with Korean headers.
var (
	stationNameKeys    = []string{"상호", "name"}
	stationAddressKeys = []string{"주소", "지번주소", "address"}
	stationLatKeys     = []string{"위도", "lat", "latitude"}
	stationLngKeys     = []string{"경도", "lng", "longitude"}
	stationIDKeys      = []string{"id", "ID", "번호"}
)

// Probe returns the first non-empty value among the candidate keys,
// stringified, or "" when none is present.
func (s Station) Probe(keys ...string) string {
	for _, key := range keys {
		if v, ok := s[key]; ok {
			str := Stringify(v)
			if str != "" {
				return str
			}
		}
	}
	return ""
}

// Name returns the station's business name, or "" when unknown.
func (s Station) Name() string {
	return s.Probe(stationNameKeys...)
}

// Address returns the station's address, or "" when unknown.
func (s Station) Address() string {
	return s.Probe(stationAddressKeys...)
}

// ID returns the record identifier, or -1 when absent or non-numeric.
func (s Station) ID() int {
	raw := s.Probe(stationIDKeys...)
	if raw == "" {
		return -1
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1
	}
	return id
}

// Coords returns the station's latitude and longitude. ok is false when
// either coordinate is absent or non-numeric.
func (s Station) Coords() (lat, lng float64, ok bool) {
	latRaw := s.Probe(stationLatKeys...)
	lngRaw := s.Probe(stationLngKeys...)
	if latRaw == "" || lngRaw == "" {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// Stringify renders a scalar attribute value for display. Floats that carry
// no fractional part print without a trailing ".0" so numeric CSV columns
// round-trip cleanly.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return Stringify(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
