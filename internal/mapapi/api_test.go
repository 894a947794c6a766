package mapapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/terramesa/uplinkmap/internal/dataset"
	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/geojson"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/search"
	"github.com/terramesa/uplinkmap/internal/visibility"
)

func testNodes() []hierarchy.Node {
	ll := func(lat, lng float64) *hierarchy.LatLng { return &hierarchy.LatLng{Lat: lat, Lng: lng} }
	return []hierarchy.Node{
		{ID: "P1", Kind: hierarchy.KindProvince, Name: "Aurora", Coords: ll(15.75, 121.55)},
		{ID: "P2", Kind: hierarchy.KindProvince, Name: "Bataan", Coords: ll(14.68, 120.42)},
		{ID: "C1", Kind: hierarchy.KindCity, Name: "Baler", ParentID: "P1", Coords: ll(15.7584, 121.5607)},
		{ID: "C2", Kind: hierarchy.KindCity, Name: "Balanga", ParentID: "P2", Coords: ll(14.6761, 120.5361)},
		{ID: "B1", Kind: hierarchy.KindBarangay, Name: "Sabang", ParentID: "C1", Coords: ll(15.7610, 121.5730)},
		{ID: "B2", Kind: hierarchy.KindBarangay, Name: "Suklayin", ParentID: "C1"},
	}
}

func setupTest(t *testing.T) (*API, chi.Router) {
	t.Helper()

	nodes := testNodes()
	ix := hierarchy.Build(nodes)
	state := hierarchy.NewState(ix)

	a := New(ix, state, search.New(nodes, 2), geoindex.New(nodes), nil, dataset.Stats{
		Provinces: dataset.KindStats{Read: 2, Kept: 2},
		Cities:    dataset.KindStats{Read: 2, Kept: 2},
		Barangays: dataset.KindStats{Read: 3, Kept: 2, MissingKey: 1},
	})

	r := chi.NewRouter()
	a.RegisterRoutes(r)
	return a, r
}

func get(t *testing.T, r chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(t *testing.T, r chi.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSnapshotEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/snapshot")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var snap snapshotResponse
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}

	if snap.Counts.Provinces != 2 || snap.Counts.Cities != 2 || snap.Counts.Barangays != 2 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
	if len(snap.Markers) != 5 {
		t.Errorf("expected 5 markers (placed nodes only), got %d", len(snap.Markers))
	}
	if len(snap.Links) != 3 {
		t.Errorf("expected 3 links, got %d", len(snap.Links))
	}
	if !snap.Visibility.CityLine["C1"] || !snap.Visibility.BarangayLine["B1"] {
		t.Errorf("expected all lines visible at bootstrap, got %+v", snap.Visibility)
	}
	if len(snap.Tree.Provinces) != 2 {
		t.Errorf("expected 2 province tree roots, got %d", len(snap.Tree.Provinces))
	}
}

func TestNodesEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/nodes")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp nodesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding nodes: %v", err)
	}
	if len(resp.Nodes) != 6 {
		t.Errorf("expected all 6 nodes, got %d", len(resp.Nodes))
	}
	for _, n := range resp.Nodes {
		if !n.Enabled || n.Icon != visibility.IconNormal {
			t.Errorf("node %s/%s should start enabled with normal icon", n.Kind, n.ID)
		}
	}
}

func TestNodeEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/nodes/city/C1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var n nodeState
	if err := json.NewDecoder(w.Body).Decode(&n); err != nil {
		t.Fatalf("decoding node: %v", err)
	}
	if n.Name != "Baler" || !n.Enabled {
		t.Errorf("unexpected node state: %+v", n)
	}

	if w := get(t, r, "/api/nodes/city/NOPE"); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
	if w := get(t, r, "/api/nodes/region/C1"); w.Code != http.StatusNotFound {
		t.Errorf("unknown kind: expected 404, got %d", w.Code)
	}
}

func TestToggleEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := post(t, r, "/api/nodes/city/C1/enabled", `{"enabled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp toggleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding toggle response: %v", err)
	}
	if resp.Enabled || resp.Icon != visibility.IconGreyed {
		t.Errorf("expected disabled greyed node, got %+v", resp)
	}
	if resp.Visibility.CityLine["C1"] {
		t.Error("C1 uplink should be hidden after disabling C1")
	}
	if resp.Visibility.BarangayLine["B1"] {
		t.Error("B1 line should be hidden after disabling its city")
	}

	// The stored state reflects the toggle.
	w = get(t, r, "/api/visibility")
	var vis visibilityResponse
	if err := json.NewDecoder(w.Body).Decode(&vis); err != nil {
		t.Fatalf("decoding visibility: %v", err)
	}
	if vis.Flags.Cities["C1"] {
		t.Error("flag for C1 should be false")
	}
	if vis.Visibility.CityLine["C2"] != true {
		t.Error("unrelated city line should stay visible")
	}
}

func TestToggleProvinceKeepsBarangayLines(t *testing.T) {
	_, r := setupTest(t)

	w := post(t, r, "/api/nodes/province/P1/enabled", `{"enabled":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp toggleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding toggle response: %v", err)
	}
	if resp.Visibility.CityLine["C1"] {
		t.Error("city line into a disabled province should be hidden")
	}
	if !resp.Visibility.BarangayLine["B1"] {
		t.Error("barangay line should survive a disabled province")
	}
}

func TestToggleIdempotent(t *testing.T) {
	_, r := setupTest(t)

	first := post(t, r, "/api/nodes/barangay/B1/enabled", `{"enabled":false}`)
	second := post(t, r, "/api/nodes/barangay/B1/enabled", `{"enabled":false}`)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200 on both, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("repeated toggle should be a no-op:\nfirst:  %s\nsecond: %s", first.Body.String(), second.Body.String())
	}
}

func TestToggleUnknownNode(t *testing.T) {
	_, r := setupTest(t)

	if w := post(t, r, "/api/nodes/city/ZZ/enabled", `{"enabled":false}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown node, got %d", w.Code)
	}
}

func TestToggleBadBody(t *testing.T) {
	_, r := setupTest(t)

	if w := post(t, r, "/api/nodes/city/C1/enabled", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing enabled field, got %d", w.Code)
	}
	if w := post(t, r, "/api/nodes/city/C1/enabled", `{"enabled":`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for broken JSON, got %d", w.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	_, r := setupTest(t)

	post(t, r, "/api/nodes/city/C1/enabled", `{"enabled":false}`)

	w := post(t, r, "/api/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp visibilityResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding reset response: %v", err)
	}
	if !resp.Flags.Cities["C1"] {
		t.Error("reset should re-enable C1")
	}
	if !resp.Visibility.CityLine["C1"] || !resp.Visibility.BarangayLine["B1"] {
		t.Errorf("reset should restore all lines, got %+v", resp.Visibility)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/search?q=baler")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding search response: %v", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "C1" {
		t.Errorf("expected Baler first, got %+v", resp.Results)
	}

	if w := get(t, r, "/api/search?q=baler&kind=region"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", w.Code)
	}
	if w := get(t, r, "/api/search?q="); w.Code != http.StatusBadRequest {
		t.Errorf("empty query: expected 400, got %d", w.Code)
	}
	if w := get(t, r, "/api/search?q=baler&limit=x"); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
}

func TestNearestEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/nearest?lat=15.7584&lng=121.5607")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp nearestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding nearest response: %v", err)
	}
	if resp.Match.Node.ID != "C1" {
		t.Errorf("expected C1 nearest, got %s", resp.Match.Node.ID)
	}

	if w := get(t, r, "/api/nearest?lat=abc&lng=121"); w.Code != http.StatusBadRequest {
		t.Errorf("bad lat: expected 400, got %d", w.Code)
	}
	if w := get(t, r, "/api/nearest?lat=0&lng=0"); w.Code != http.StatusNotFound {
		t.Errorf("open ocean: expected 404, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp statsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if resp.Placed != 5 {
		t.Errorf("expected 5 placed nodes, got %d", resp.Placed)
	}
	if resp.Links != 3 {
		t.Errorf("expected 3 links, got %d", resp.Links)
	}
	if resp.Load.Barangays.MissingKey != 1 {
		t.Errorf("expected load stats to pass through, got %+v", resp.Load)
	}
	if resp.LastImport != nil {
		t.Errorf("expected no import record without a store, got %+v", resp.LastImport)
	}
}

func TestExportEndpoint(t *testing.T) {
	_, r := setupTest(t)

	w := get(t, r, "/api/export.geojson")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected geo+json content type, got %q", ct)
	}

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(w.Body).Decode(&fc); err != nil {
		t.Fatalf("decoding feature collection: %v", err)
	}
	if len(fc.Features) != 8 {
		t.Errorf("expected 5 markers + 3 lines = 8 features, got %d", len(fc.Features))
	}
}

// testPush decodes both visibility and error pushes.
type testPush struct {
	Type       string            `json:"type"`
	Error      string            `json:"error"`
	Flags      visibility.Flags  `json:"flags"`
	Visibility visibility.Result `json:"visibility"`
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPush(t *testing.T, conn *websocket.Conn) testPush {
	t.Helper()
	var push testPush
	if err := conn.ReadJSON(&push); err != nil {
		t.Fatalf("websocket read: %v", err)
	}
	return push
}

func TestWebSocketInitialPush(t *testing.T) {
	_, r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server)

	push := readPush(t, conn)
	if push.Type != "visibility" {
		t.Fatalf("expected visibility push on connect, got %q", push.Type)
	}
	if !push.Flags.Cities["C1"] {
		t.Error("initial push should carry all-enabled flags")
	}
	if !push.Visibility.BarangayLine["B1"] {
		t.Error("initial push should carry full visibility")
	}
}

func TestWebSocketToggle(t *testing.T) {
	_, r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server)
	readPush(t, conn) // initial state

	if err := conn.WriteJSON(clientMessage{Type: "toggle", Kind: "city", ID: "C1", Enabled: boolPtr(false)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	push := readPush(t, conn)
	if push.Type != "visibility" {
		t.Fatalf("expected visibility push, got %q (%s)", push.Type, push.Error)
	}
	if push.Visibility.CityLine["C1"] || push.Visibility.BarangayLine["B1"] {
		t.Errorf("disabling C1 should hide its uplink and barangay lines, got %+v", push.Visibility)
	}
	if push.Flags.Cities["C1"] {
		t.Error("pushed flags should show C1 disabled")
	}
}

func TestWebSocketReset(t *testing.T) {
	_, r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server)
	readPush(t, conn)

	conn.WriteJSON(clientMessage{Type: "toggle", Kind: "province", ID: "P1", Enabled: boolPtr(false)})
	readPush(t, conn)

	if err := conn.WriteJSON(clientMessage{Type: "reset"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	push := readPush(t, conn)
	if !push.Flags.Provinces["P1"] {
		t.Error("reset should re-enable P1")
	}
	if !push.Visibility.CityLine["C1"] {
		t.Error("reset should restore C1 uplink")
	}
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	_, r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server)
	readPush(t, conn)

	cases := []struct {
		name string
		msg  clientMessage
		want string
	}{
		{"unknown type", clientMessage{Type: "nudge"}, "unknown message type"},
		{"unknown kind", clientMessage{Type: "toggle", Kind: "region", ID: "C1", Enabled: boolPtr(false)}, "unknown kind"},
		{"missing id", clientMessage{Type: "toggle", Kind: "city", Enabled: boolPtr(false)}, "id is required"},
		{"missing enabled", clientMessage{Type: "toggle", Kind: "city", ID: "C1"}, "enabled is required"},
		{"unknown node", clientMessage{Type: "toggle", Kind: "city", ID: "ZZ", Enabled: boolPtr(false)}, "unknown node"},
	}
	for _, tc := range cases {
		if err := conn.WriteJSON(tc.msg); err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		push := readPush(t, conn)
		if push.Type != "error" {
			t.Errorf("%s: expected error push, got %q", tc.name, push.Type)
			continue
		}
		if !strings.Contains(push.Error, tc.want) {
			t.Errorf("%s: expected error containing %q, got %q", tc.name, tc.want, push.Error)
		}
	}
}

func TestWebSocketBroadcastOnRESTToggle(t *testing.T) {
	_, r := setupTest(t)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialWS(t, server)
	readPush(t, conn)

	resp, err := http.Post(server.URL+"/api/nodes/city/C1/enabled", "application/json", strings.NewReader(`{"enabled":false}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	push := readPush(t, conn)
	if push.Type != "visibility" {
		t.Fatalf("expected visibility push after REST toggle, got %q", push.Type)
	}
	if push.Visibility.CityLine["C1"] {
		t.Error("REST toggle should reach websocket clients")
	}
}

func boolPtr(b bool) *bool { return &b }
