package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nullbind-probe/pkg/database"
	"nullbind-probe/pkg/probe"

	_ "modernc.org/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.NewDatabase(database.Config{DBType: "sqlite", DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mux := http.NewServeMux()
	(&Server{DB: db}).Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// TestProbeEndpoint runs the scenario over HTTP and checks the JSON report
// carries the same verdicts as a console run.
func TestProbeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/probe")
	if err != nil {
		t.Fatalf("GET /probe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var rep probe.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Status != "ok" {
		t.Errorf("report status = %q, want ok", rep.Status)
	}
	if rep.Inserted != 3 || len(rep.Rows) != 3 {
		t.Errorf("inserted=%d rows=%d, want 3/3", rep.Inserted, len(rep.Rows))
	}
}

// TestProbeEndpointRepeats covers idempotence over HTTP: two consecutive
// runs must both start from an empty table.
func TestProbeEndpointRepeats(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/probe")
		if err != nil {
			t.Fatalf("GET %d: %v", i, err)
		}
		var rep probe.Report
		err = json.NewDecoder(resp.Body).Decode(&rep)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if len(rep.Rows) != 3 {
			t.Errorf("run %d read back %d rows, want 3 (residue from earlier run?)", i, len(rep.Rows))
		}
	}
}

func TestQRHandler(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/qr.png")
	if err != nil {
		t.Fatalf("GET /qr.png: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
}
