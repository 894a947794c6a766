package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const (
	provincesCSV = "id,name,lat,lng\nP1,Aurora,15.75,121.33\nP2,Bataan,14.68,120.42\nP3,Offgrid,,\n"
	citiesCSV    = "id,name,province_id,lat,lng\nC1,Baler,P1,15.76,121.56\nC2,Balanga,P2,14.68,120.54\nC3,Floating,,14.10,120.90\n"
	barangaysCSV = "id,name,city_id,lat,lng\nB1,Sabang,C1,15.77,121.57\nB2,Suklayin,C1,15.74,121.55\nB3,Tuyo,C2,14.69,120.55\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func writeTables(t *testing.T, provinces, cities, barangays string) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		Provinces: writeFile(t, dir, "provinces.csv", provinces),
		Cities:    writeFile(t, dir, "cities.csv", cities),
		Barangays: writeFile(t, dir, "barangays.csv", barangays),
	}
}

func TestLoad(t *testing.T) {
	srcs := writeTables(t, provincesCSV, citiesCSV, barangaysCSV)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := len(tables.Provinces), 3; got != want {
		t.Errorf("provinces = %d, want %d", got, want)
	}
	if got, want := len(tables.Cities), 3; got != want {
		t.Errorf("cities = %d, want %d", got, want)
	}
	if got, want := len(tables.Barangays), 3; got != want {
		t.Errorf("barangays = %d, want %d", got, want)
	}
	if tables.Stats.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", tables.Stats.Dropped())
	}

	p := tables.Provinces[0]
	if p.ID != "P1" || p.Name != "Aurora" {
		t.Errorf("first province = %+v", p)
	}
	if p.Lat == nil || *p.Lat != 15.75 {
		t.Errorf("P1 lat = %v, want 15.75", p.Lat)
	}
	if tables.Provinces[2].Lat != nil {
		t.Error("P3 has coordinates, want none")
	}
	if tables.Cities[2].ProvinceID != "" {
		t.Errorf("C3 province = %q, want empty", tables.Cities[2].ProvinceID)
	}
}

func TestLoadDropsRowsMissingRequiredKeys(t *testing.T) {
	srcs := writeTables(t,
		"id,name\nP1,Aurora\n,NoID\n",
		"id,name,province_id\nC1,Baler,P1\n,Nameless,P1\n",
		"id,name,city_id\nB1,Sabang,C1\nB2,NoCity,\n,NoID,C1\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := tables.Stats.Provinces.MissingKey, 1; got != want {
		t.Errorf("province missing keys = %d, want %d", got, want)
	}
	if got, want := tables.Stats.Barangays.MissingKey, 2; got != want {
		t.Errorf("barangay missing keys = %d, want %d", got, want)
	}
	if got, want := len(tables.Barangays), 1; got != want {
		t.Fatalf("barangays kept = %d, want %d", got, want)
	}
	if tables.Barangays[0].ID != "B1" {
		t.Errorf("kept barangay = %q, want B1", tables.Barangays[0].ID)
	}
}

func TestLoadTrimsWhitespace(t *testing.T) {
	srcs := writeTables(t,
		"id,name,lat,lng\n  P1 ,  Aurora  , 15.75 , 121.33 \n",
		"id,name,province_id\nC1,Baler,  P1  \n",
		"id,name,city_id\nB1,Sabang,C1\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := tables.Provinces[0]
	if p.ID != "P1" || p.Name != "Aurora" {
		t.Errorf("province = %+v, want trimmed fields", p)
	}
	if p.Lat == nil || *p.Lat != 15.75 {
		t.Errorf("lat = %v, want 15.75", p.Lat)
	}
	if got := tables.Cities[0].ProvinceID; got != "P1" {
		t.Errorf("province id = %q, want P1", got)
	}
}

func TestLoadBadCoordinatesTreatedAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		lat  string
		lng  string
	}{
		{"both empty", "", ""},
		{"not a number", "abc", "121.3"},
		{"lone latitude", "15.7", ""},
		{"lone longitude", "", "121.3"},
		{"nan", "NaN", "121.3"},
		{"infinity", "15.7", "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs := writeTables(t,
				"id,name,lat,lng\nP1,Aurora,"+tt.lat+","+tt.lng+"\n",
				"id,name\nC1,Baler\n",
				"id,name,city_id\nB1,Sabang,C1\n",
			)
			tables, err := Load(context.Background(), srcs)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got, want := len(tables.Provinces), 1; got != want {
				t.Fatalf("provinces = %d, want %d (row must survive)", got, want)
			}
			if tables.Provinces[0].Lat != nil || tables.Provinces[0].Lng != nil {
				t.Errorf("coordinates = (%v, %v), want absent", tables.Provinces[0].Lat, tables.Provinces[0].Lng)
			}
		})
	}
}

func TestLoadDuplicateIDFirstWins(t *testing.T) {
	srcs := writeTables(t,
		"id,name\nP1,First\nP1,Second\n",
		"id,name\nC1,Baler\n",
		"id,name,city_id\nB1,Sabang,C1\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := len(tables.Provinces), 1; got != want {
		t.Fatalf("provinces = %d, want %d", got, want)
	}
	if got := tables.Provinces[0].Name; got != "First" {
		t.Errorf("kept name = %q, want First", got)
	}
	if got, want := tables.Stats.Provinces.Duplicate, 1; got != want {
		t.Errorf("duplicates = %d, want %d", got, want)
	}
}

// A row dropped for a missing key must not reserve its id: a complete
// row with the same id later in the file still loads.
func TestLoadDroppedRowDoesNotReserveID(t *testing.T) {
	srcs := writeTables(t,
		"id,name\nP1,Aurora\n",
		"id,name\nC1,Baler\n",
		"id,name,city_id\nB1,Incomplete,\nB1,Sabang,C1\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := len(tables.Barangays), 1; got != want {
		t.Fatalf("barangays = %d, want %d", got, want)
	}
	if got := tables.Barangays[0].Name; got != "Sabang" {
		t.Errorf("kept barangay name = %q, want Sabang", got)
	}
	if got := tables.Stats.Barangays.Duplicate; got != 0 {
		t.Errorf("duplicates = %d, want 0", got)
	}
}

func TestLoadHeaderOrderIrrelevant(t *testing.T) {
	srcs := writeTables(t,
		"name,lng,id,lat\nAurora,121.33,P1,15.75\n",
		"province_id,id,name\nP1,C1,Baler\n",
		"city_id,barangay_id,name\nC1,B1,Sabang\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := tables.Provinces[0]
	if p.ID != "P1" || p.Lat == nil || *p.Lat != 15.75 {
		t.Errorf("province = %+v, want P1 at 15.75", p)
	}
	if got := tables.Barangays[0].CityID; got != "C1" {
		t.Errorf("barangay city = %q, want C1", got)
	}
}

func TestLoadSkipsCommentLines(t *testing.T) {
	srcs := writeTables(t,
		"id,name\n# not a row\nP1,Aurora\n",
		"id,name\nC1,Baler\n",
		"id,name,city_id\nB1,Sabang,C1\n",
	)
	tables, err := Load(context.Background(), srcs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := len(tables.Provinces), 1; got != want {
		t.Errorf("provinces = %d, want %d", got, want)
	}
	if got := tables.Stats.Provinces.Read; got != 1 {
		t.Errorf("rows read = %d, want 1", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	srcs := writeTables(t, provincesCSV, citiesCSV, barangaysCSV)
	srcs.Cities = filepath.Join(t.TempDir(), "absent.csv")
	if _, err := Load(context.Background(), srcs); err == nil {
		t.Fatal("Load succeeded with a missing table file")
	}
}

func TestLoadHeaderWithoutIDFails(t *testing.T) {
	srcs := writeTables(t, "name,lat,lng\nAurora,1,2\n", citiesCSV, barangaysCSV)
	if _, err := Load(context.Background(), srcs); err == nil {
		t.Fatal("Load succeeded without an id column")
	}
}

func TestLoadHTTPSources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/provinces.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(provincesCSV))
	})
	mux.HandleFunc("/cities.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(citiesCSV))
	})
	mux.HandleFunc("/barangays.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(barangaysCSV))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	tables, err := Load(context.Background(), Sources{
		Provinces: ts.URL + "/provinces.csv",
		Cities:    ts.URL + "/cities.csv",
		Barangays: ts.URL + "/barangays.csv",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := tables.Stats.Kept(), 9; got != want {
		t.Errorf("kept rows = %d, want %d", got, want)
	}
}

func TestLoadHTTPErrorStatusFails(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := Load(context.Background(), Sources{
		Provinces: ts.URL + "/provinces.csv",
		Cities:    ts.URL + "/cities.csv",
		Barangays: ts.URL + "/barangays.csv",
	})
	if err == nil {
		t.Fatal("Load succeeded against a 404 source")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "provinces.csv", provincesCSV)
	writeFile(t, dir, "cities.csv", citiesCSV)
	writeFile(t, dir, "barangays.csv", barangaysCSV)

	srcs, err := Discover(dir, Patterns{
		Provinces: "provinces*.csv",
		Cities:    "**/cities.csv",
		Barangays: "barangays.csv",
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got, want := srcs.Provinces, filepath.Join(dir, "provinces.csv"); got != want {
		t.Errorf("provinces source = %q, want %q", got, want)
	}
	if got, want := srcs.Cities, filepath.Join(dir, "cities.csv"); got != want {
		t.Errorf("cities source = %q, want %q", got, want)
	}
}

func TestDiscoverURLPassthrough(t *testing.T) {
	srcs, err := Discover(t.TempDir(), Patterns{
		Provinces: "https://example.com/provinces.csv",
		Cities:    "https://example.com/cities.csv",
		Barangays: "https://example.com/barangays.csv",
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if srcs.Provinces != "https://example.com/provinces.csv" {
		t.Errorf("provinces source = %q, want the URL untouched", srcs.Provinces)
	}
}

func TestDiscoverNoMatchFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "provinces.csv", provincesCSV)

	_, err := Discover(dir, Patterns{
		Provinces: "provinces.csv",
		Cities:    "cities.csv",
		Barangays: "barangays.csv",
	})
	if err == nil {
		t.Fatal("Discover succeeded with missing tables")
	}
}
