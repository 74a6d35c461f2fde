package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"planetforge.ai/internal/persistence/indexdb"
	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/presets"
	"planetforge.ai/internal/worker"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestHandlers_PresetsHealthAndMetrics(t *testing.T) {
	w := worker.New(worker.Config{}, nil)
	list := []presets.Preset{
		{Name: "verdant", Digest: "abc", Config: planet.Config{Detail: 3, Seed: 7}},
	}
	srv := httptest.NewServer(newMux(handlerDeps{worker: w, presets: list}))
	defer srv.Close()

	if code, body := get(t, srv, "/healthz"); code != 200 || body != "ok" {
		t.Fatalf("healthz code=%d body=%q", code, body)
	}

	code, body := get(t, srv, "/v1/presets")
	if code != 200 {
		t.Fatalf("presets code=%d", code)
	}
	var resp struct {
		Presets []presetSummary `json:"presets"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Presets) != 1 || resp.Presets[0].Name != "verdant" || resp.Presets[0].Seed != 7 {
		t.Fatalf("presets=%+v", resp.Presets)
	}
	if code, _ := get(t, srv, "/v1/presets/verdant"); code != 200 {
		t.Fatalf("preset code=%d", code)
	}
	if code, _ := get(t, srv, "/v1/presets/missing"); code != http.StatusNotFound {
		t.Fatalf("missing preset code=%d", code)
	}
	if code, _ := get(t, srv, "/v1/runs"); code != http.StatusServiceUnavailable {
		t.Fatalf("runs without index code=%d", code)
	}

	code, body = get(t, srv, "/metrics")
	if code != 200 {
		t.Fatalf("metrics code=%d", code)
	}
	for _, want := range []string{
		`planetforge_generations_total{outcome="ok"} 0`,
		"planetforge_worker_busy 0",
		"planetforge_presets_loaded 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestHandlers_RunsFromIndex(t *testing.T) {
	idx, err := indexdb.OpenSQLite(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()
	if err := idx.UpsertPresets(context.Background(), presetRows([]presets.Preset{{Name: "a", Digest: "d", Raw: []byte("name: a")}})); err != nil {
		t.Fatalf("UpsertPresets: %v", err)
	}

	srv := httptest.NewServer(newMux(handlerDeps{index: idx}))
	defer srv.Close()
	code, body := get(t, srv, "/v1/runs?limit=5")
	if code != 200 || !strings.Contains(body, `"runs"`) {
		t.Fatalf("runs code=%d body=%s", code, body)
	}
	code, body = get(t, srv, "/metrics")
	if code != 200 || !strings.Contains(body, "planetforge_index_dropped_total 0") {
		t.Fatalf("metrics code=%d body=%s", code, body)
	}
}
