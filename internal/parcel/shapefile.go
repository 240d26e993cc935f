package parcel

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// readShapefile reads every polygon record from a shapefile into parcel
// Records. Non-polygon shapes and malformed rings are skipped, not fatal.
func readShapefile(shpPath string) ([]Record, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field index → name map.
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var records []Record
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(map[string]any, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				attrs[name] = val
			}
		}

		poly := polygonFromShape(shape)
		if poly == nil {
			skipped++
		}
		records = append(records, Record{Geom: poly, Attrs: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("parcel: shapefile records without usable geometry",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return records, nil
}

// polygonFromShape converts a go-shp polygon to a go-geom polygon, treating
// each shapefile part as a ring of the same polygon. Returns nil for nil,
// non-polygon, or fully malformed shapes.
func polygonFromShape(shape shp.Shape) *geom.Polygon {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	poly := geom.NewPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("parcel: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	return poly
}
