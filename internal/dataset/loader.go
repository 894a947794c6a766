package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// httpClient is shared by all remote table fetches. There are no
// retries: a failed fetch is terminal for the whole load.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load reads the three tables in parallel and joins before returning.
// Any table that fails to open or parse aborts the whole load.
func Load(ctx context.Context, srcs Sources) (*Tables, error) {
	t := &Tables{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, stats, err := loadProvinces(ctx, srcs.Provinces)
		if err != nil {
			return fmt.Errorf("loading provinces from %s: %w", srcs.Provinces, err)
		}
		t.Provinces, t.Stats.Provinces = rows, stats
		return nil
	})
	g.Go(func() error {
		rows, stats, err := loadCities(ctx, srcs.Cities)
		if err != nil {
			return fmt.Errorf("loading cities from %s: %w", srcs.Cities, err)
		}
		t.Cities, t.Stats.Cities = rows, stats
		return nil
	})
	g.Go(func() error {
		rows, stats, err := loadBarangays(ctx, srcs.Barangays)
		if err != nil {
			return fmt.Errorf("loading barangays from %s: %w", srcs.Barangays, err)
		}
		t.Barangays, t.Stats.Barangays = rows, stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func loadProvinces(ctx context.Context, src string) ([]ProvinceRow, KindStats, error) {
	return scanTable(ctx, src, []string{"id", "province_id"}, func(rec record) (ProvinceRow, string, bool) {
		id := rec.field("id", "province_id")
		if id == "" {
			return ProvinceRow{}, "", false
		}
		lat, lng := rec.coords()
		return ProvinceRow{
			ID:   id,
			Name: rec.field("name", "province_name"),
			Lat:  lat,
			Lng:  lng,
		}, id, true
	})
}

func loadCities(ctx context.Context, src string) ([]CityRow, KindStats, error) {
	return scanTable(ctx, src, []string{"id", "city_id"}, func(rec record) (CityRow, string, bool) {
		id := rec.field("id", "city_id")
		if id == "" {
			return CityRow{}, "", false
		}
		lat, lng := rec.coords()
		return CityRow{
			ID:         id,
			Name:       rec.field("name", "city_name"),
			ProvinceID: rec.field("province_id", "province"),
			Lat:        lat,
			Lng:        lng,
		}, id, true
	})
}

func loadBarangays(ctx context.Context, src string) ([]BarangayRow, KindStats, error) {
	return scanTable(ctx, src, []string{"id", "barangay_id"}, func(rec record) (BarangayRow, string, bool) {
		id := rec.field("id", "barangay_id")
		cityID := rec.field("city_id", "city")
		if id == "" || cityID == "" {
			return BarangayRow{}, "", false
		}
		lat, lng := rec.coords()
		return BarangayRow{
			ID:     id,
			Name:   rec.field("name", "barangay_name"),
			CityID: cityID,
			Lat:    lat,
			Lng:    lng,
		}, id, true
	})
}

// record pairs one CSV row with its header so cells can be pulled by
// column name regardless of column order.
type record struct {
	header map[string]int
	cells  []string
}

// field returns the first named column's cell, trimmed. Missing
// columns and short rows read as empty.
func (r record) field(names ...string) string {
	for _, n := range names {
		i, ok := r.header[n]
		if !ok || i >= len(r.cells) {
			continue
		}
		if v := strings.TrimSpace(r.cells[i]); v != "" {
			return v
		}
	}
	return ""
}

// coords parses the latitude and longitude cells as a pair. Either
// cell failing to parse makes the whole pair absent.
func (r record) coords() (*float64, *float64) {
	lat := parseCoord(r.field("lat", "latitude"))
	lng := parseCoord(r.field("lng", "lon", "longitude"))
	if lat == nil || lng == nil {
		return nil, nil
	}
	return lat, lng
}

// parseCoord parses one coordinate cell. Anything that does not parse
// to a finite number counts as absent.
func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// scanTable streams one table. parse turns a row into its typed form
// and reports whether the required keys were present; rows without
// them are dropped and counted, as is every repeat of an already seen
// id (first row wins).
func scanTable[T any](ctx context.Context, src string, idColumns []string, parse func(record) (T, string, bool)) ([]T, KindStats, error) {
	var (
		rows  []T
		stats KindStats
	)

	rc, err := open(ctx, src)
	if err != nil {
		return nil, stats, err
	}
	defer rc.Close()

	r := newReader(rc)
	head, err := r.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if !hasAny(header, idColumns) {
		return nil, stats, fmt.Errorf("header %v has no id column (want one of %v)", head, idColumns)
	}

	seen := make(map[string]bool)
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", stats.Read+1, err)
		}
		stats.Read++
		row, id, ok := parse(record{header: header, cells: cells})
		if !ok {
			stats.MissingKey++
			continue
		}
		if seen[id] {
			stats.Duplicate++
			continue
		}
		seen[id] = true
		rows = append(rows, row)
		stats.Kept++
	}
	return rows, stats, nil
}

func hasAny(header map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := header[n]; ok {
			return true
		}
	}
	return false
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// open returns a reader for a table source, either a local file or an
// http(s) URL.
func open(ctx context.Context, src string) (io.ReadCloser, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(src)
}
