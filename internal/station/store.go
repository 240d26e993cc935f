// Package station serves the decommissioned gas-station dataset: loading
// from CSV/XLSX sources and simple attribute-based lookups over it.
package station

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/sells-group/station-insight-cli/internal/model"
)

// BBox is a latitude/longitude bounding box.
type BBox struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// Store holds the station dataset in memory. Read-only after Load.
type Store struct {
	idColumn string
	stations []model.Station
}

// NewStore creates an empty store. idColumn names the dataset's identifier
// column; rows without it fall back to their row index as the ID.
func NewStore(idColumn string) *Store {
	if idColumn == "" {
		idColumn = "id"
	}
	return &Store{idColumn: idColumn}
}

// Count returns the number of loaded stations.
func (s *Store) Count() int {
	return len(s.stations)
}

// Load reads the dataset at path. The format is chosen by extension:
// .xlsx via the spreadsheet reader, anything else as delimited text.
func (s *Store) Load(path string) error {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSXRows(path)
	} else {
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return eris.Errorf("station: dataset %s has no data rows", path)
	}

	header := rows[0]
	stations := make([]model.Station, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		st := make(model.Station, len(header)+1)
		for i, key := range header {
			if i >= len(row) {
				break
			}
			val := strings.TrimSpace(row[i])
			if val == "" {
				continue
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				st[key] = f
			} else {
				st[key] = val
			}
		}
		if _, ok := st[s.idColumn]; !ok {
			st[s.idColumn] = float64(idx)
		}
		stations = append(stations, st)
	}

	s.stations = stations
	zap.L().Info("station: dataset loaded",
		zap.String("path", path),
		zap.Int("stations", len(stations)),
	)
	return nil
}

// GetByID returns the station whose identifier column equals id.
func (s *Store) GetByID(id int) (model.Station, bool) {
	for _, st := range s.stations {
		if raw, ok := st[s.idColumn]; ok {
			if model.Stringify(raw) == strconv.Itoa(id) {
				return st, true
			}
		}
	}
	return nil, false
}

// SearchByName returns stations whose name contains the query substring.
func (s *Store) SearchByName(query string, limit int) []model.Station {
	var out []model.Station
	for _, st := range s.stations {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(st.Name(), query) {
			out = append(out, st)
		}
	}
	return out
}

// SearchBBox returns stations with valid coordinates inside the box.
func (s *Store) SearchBBox(box BBox, limit int) []model.Station {
	var out []model.Station
	for _, st := range s.stations {
		if limit > 0 && len(out) >= limit {
			break
		}
		lat, lng, ok := st.Coords()
		if !ok {
			continue
		}
		if lat >= box.MinLat && lat <= box.MaxLat && lng >= box.MinLng && lng <= box.MaxLng {
			out = append(out, st)
		}
	}
	return out
}

// SearchRegion returns stations whose address mentions the region name.
func (s *Store) SearchRegion(region string, limit int) []model.Station {
	var out []model.Station
	for _, st := range s.stations {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(st.Address(), region) {
			out = append(out, st)
		}
	}
	return out
}

// readCSVRows reads a delimited text file. Korean government datasets often
// ship in EUC-KR; invalid UTF-8 triggers a transcoding pass.
func readCSVRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "station: read %s", path)
	}

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
		if err != nil {
			return nil, eris.Wrapf(err, "station: decode EUC-KR %s", path)
		}
		data = decoded
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "station: parse CSV %s", path)
	}
	return rows, nil
}

// readXLSXRows reads the first sheet of a spreadsheet as string rows.
func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "station: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("station: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
