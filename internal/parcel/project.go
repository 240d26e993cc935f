package parcel

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Korean cadastral exports ship in the domestic Transverse Mercator grids
// (Korea 2000 belts, UTM-K) far more often than in geographic coordinates.
// Rather than pinning EPSG codes, the projection is reconstructed from the
// sidecar .prj WKT: PROJECTION, PARAMETER and SPHEROID entries carry
// everything the inverse needs. Anything that is not a Transverse Mercator
// or a plain geographic CRS passes through untouched with a diagnostic.

// projection describes a Transverse Mercator grid read from a .prj file.
type projection struct {
	a, f2          float64 // semi-major axis, inverse flattening
	lat0, lon0     float64 // origin, degrees
	k0             float64 // scale factor
	falseE, falseN float64
}

var (
	projectionRe = regexp.MustCompile(`PROJECTION\["([^"]+)"\]`)
	parameterRe  = regexp.MustCompile(`PARAMETER\["([^"]+)",\s*(-?[0-9.]+)\]`)
	spheroidRe   = regexp.MustCompile(`SPHEROID\["[^"]*",\s*(-?[0-9.]+),\s*(-?[0-9.]+)`)
)

// parsePRJ interprets .prj WKT. Returns (nil, tag) for geographic CRS and
// (nil, "") for unrecognized content.
func parsePRJ(wkt string) (*projection, string) {
	wkt = strings.TrimSpace(wkt)
	if wkt == "" {
		return nil, ""
	}

	projMatch := projectionRe.FindStringSubmatch(wkt)
	if projMatch == nil {
		if strings.HasPrefix(wkt, "GEOGCS") {
			return nil, "EPSG:4326"
		}
		return nil, ""
	}
	if !strings.EqualFold(strings.ReplaceAll(projMatch[1], "_", ""), "TransverseMercator") {
		return nil, ""
	}

	p := &projection{a: 6378137.0, f2: 298.257222101, k0: 1.0} // GRS80 defaults
	if sph := spheroidRe.FindStringSubmatch(wkt); sph != nil {
		if a, err := strconv.ParseFloat(sph[1], 64); err == nil && a > 0 {
			p.a = a
		}
		if f2, err := strconv.ParseFloat(sph[2], 64); err == nil && f2 > 0 {
			p.f2 = f2
		}
	}
	for _, m := range parameterRe.FindAllStringSubmatch(wkt, -1) {
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "latitude_of_origin":
			p.lat0 = val
		case "central_meridian":
			p.lon0 = val
		case "scale_factor":
			p.k0 = val
		case "false_easting":
			p.falseE = val
		case "false_northing":
			p.falseN = val
		}
	}
	return p, "TM"
}

// inverse converts grid easting/northing to longitude/latitude degrees using
// the standard Transverse Mercator inverse series.
func (p *projection) inverse(x, y float64) (lng, lat float64) {
	f := 1 / p.f2
	e2 := f * (2 - f)
	ep2 := e2 / (1 - e2)

	m0 := meridianArc(p.a, e2, p.lat0*math.Pi/180)
	m := m0 + (y-p.falseN)/p.k0
	mu := m / (p.a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	se := math.Sqrt(1 - e2)
	e1 := (1 - se) / (1 + se)
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1
	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := p.a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := p.a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (x - p.falseE) / (n1 * p.k0)

	latRad := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lngRad := p.lon0*math.Pi/180 + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi1

	return lngRad * 180 / math.Pi, latRad * 180 / math.Pi
}

// meridianArc returns the ellipsoidal meridian arc length from the equator.
func meridianArc(a, e2, phi float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return a * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// reproject converts every record's polygon to geographic degrees in place
// (records hold freshly decoded polygons at this point, nothing is shared).
// Returns the CRS tag recorded on the dataset.
func reproject(records []Record, prjWKT, region string) string {
	proj, tag := parsePRJ(prjWKT)
	if proj == nil {
		if tag == "" && strings.TrimSpace(prjWKT) != "" {
			zap.L().Warn("parcel: unrecognized CRS, assuming geographic degrees",
				zap.String("region", region))
		}
		return "EPSG:4326"
	}

	for _, rec := range records {
		if rec.Geom == nil {
			continue
		}
		flat := rec.Geom.FlatCoords()
		for i := 0; i+1 < len(flat); i += 2 {
			flat[i], flat[i+1] = proj.inverse(flat[i], flat[i+1])
		}
	}
	return "EPSG:4326"
}

// ringCoords returns the polygon's outer ring as flat XY pairs.
func ringCoords(poly *geom.Polygon) []float64 {
	if poly == nil || poly.NumLinearRings() == 0 {
		return nil
	}
	return poly.LinearRing(0).FlatCoords()
}
