package parcel

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// NotFoundError marks a region whose source data is absent. Callers that
// asked for the region by name see it; opportunistic discovery treats it as
// skip-and-continue.
type NotFoundError struct {
	Region string
	Path   string
}

func (e *NotFoundError) Error() string {
	return "parcel: region data not found: " + e.Region + " (" + e.Path + ")"
}

// IsNotFound reports whether err is a region NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Repository lazily loads per-region parcel datasets from a directory-per-
// region layout and serves radius queries over the union of cached regions.
//
// The cache is unbounded and never evicted: region count is small and finite,
// and datasets are immutable once inserted. Loads are read-only
// transformations of immutable source files, so a racing duplicate load
// simply swaps in an equivalent dataset.
type Repository struct {
	baseDir string

	mu      sync.RWMutex
	cache   map[string]*Dataset
	loaded  bool
	lastErr string
}

// NewRepository creates a repository over a directory-per-region-code layout.
func NewRepository(baseDir string) *Repository {
	return &Repository{
		baseDir: baseDir,
		cache:   make(map[string]*Dataset),
	}
}

// IsLoaded reports whether at least one non-empty region dataset is cached.
func (r *Repository) IsLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// LastError returns the most recent loading or query diagnostic. It exists
// for observability only; callers must not branch on it.
func (r *Repository) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Regions returns the region codes currently cached, sorted.
func (r *Repository) Regions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.cache))
	for code := range r.cache {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (r *Repository) recordError(msg string) {
	r.mu.Lock()
	r.lastErr = msg
	r.mu.Unlock()
	zap.L().Warn(msg)
}

// LoadRegion loads one region's shapefile, reprojects it to geographic
// degrees, and caches the dataset. Idempotent: repeat calls return the
// cached dataset. Fails with NotFoundError when the region directory or its
// shapefile is missing.
func (r *Repository) LoadRegion(region string) (*Dataset, error) {
	r.mu.RLock()
	cached, ok := r.cache[region]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	dir := filepath.Join(r.baseDir, region)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Region: region, Path: dir}
	}

	shpPath, err := firstShapefile(dir)
	if err != nil {
		return nil, err
	}
	if shpPath == "" {
		return nil, &NotFoundError{Region: region, Path: dir}
	}

	records, err := readShapefile(shpPath)
	if err != nil {
		return nil, err
	}

	crs := reproject(records, readPRJ(shpPath), region)
	ds := &Dataset{Region: region, CRS: crs, Records: records}

	r.mu.Lock()
	// A concurrent load may have won the race; either dataset is equivalent.
	if existing, ok := r.cache[region]; ok {
		ds = existing
	} else {
		r.cache[region] = ds
	}
	if !ds.Empty() {
		r.loaded = true
		r.lastErr = ""
	}
	r.mu.Unlock()

	zap.L().Info("parcel: region loaded",
		zap.String("region", region),
		zap.Int("records", len(ds.Records)),
		zap.String("crs", ds.CRS),
	)
	return ds, nil
}

// EnsureLoaded opportunistically loads the first available region when the
// cache is empty. Candidate regions are tried in lexicographic order; each
// failure is recorded as a diagnostic and the next candidate is tried.
func (r *Repository) EnsureLoaded() {
	r.mu.RLock()
	n := len(r.cache)
	r.mu.RUnlock()
	if n > 0 {
		return
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		r.recordError("parcel: base directory unavailable: " + r.baseDir)
		return
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			candidates = append(candidates, entry.Name())
		}
	}
	sort.Strings(candidates)

	for _, region := range candidates {
		if _, err := r.LoadRegion(region); err != nil {
			r.recordError("parcel: load failed (" + region + "): " + err.Error())
			continue
		}
		return
	}

	if len(candidates) == 0 {
		r.recordError("parcel: no region datasets available under " + r.baseDir)
	}
}

// Nearby returns the parcels whose geometry lies within radiusDeg (straight
// coordinate-space distance) of the point, unioned across all cached
// regions. Missing data is an expected condition: the result is empty, never
// an error. A per-region distance failure is recorded and that region is
// skipped.
func (r *Repository) Nearby(pt Point, radiusDeg float64) []Record {
	r.EnsureLoaded()

	r.mu.RLock()
	regions := make([]*Dataset, 0, len(r.cache))
	for _, ds := range r.cache {
		regions = append(regions, ds)
	}
	r.mu.RUnlock()

	sort.Slice(regions, func(i, j int) bool { return regions[i].Region < regions[j].Region })

	var out []Record
	for _, ds := range regions {
		matched, err := datasetNearby(ds, pt, radiusDeg)
		if err != nil {
			r.recordError("parcel: distance query failed (" + ds.Region + "): " + err.Error())
			continue
		}
		out = append(out, matched...)
	}
	return out
}

// datasetNearby filters one region's records by coordinate-space distance.
func datasetNearby(ds *Dataset, pt Point, radiusDeg float64) ([]Record, error) {
	if ds.Empty() {
		return nil, nil
	}
	var out []Record
	for _, rec := range ds.Records {
		if rec.Geom == nil {
			continue
		}
		d, err := coordDistance(pt, rec.Geom)
		if err != nil {
			continue // degenerate geometry, skip the record
		}
		if d <= radiusDeg {
			out = append(out, rec)
		}
	}
	return out, nil
}

// firstShapefile returns the first .shp file in the directory by sorted
// listing order, or "" when none exists.
func firstShapefile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "parcel: list %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".shp") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// readPRJ returns the sidecar .prj content for a shapefile, or "".
func readPRJ(shpPath string) string {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return ""
	}
	return string(data)
}
