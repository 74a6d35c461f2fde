package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"planetforge.ai/internal/presets"
	"planetforge.ai/internal/transport/ws"
	"planetforge.ai/internal/worker"
)

type handlerDeps struct {
	worker  *worker.Worker
	ws      *ws.Server
	index   runIndex
	presets []presets.Preset
}

type presetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Digest      string `json:"digest"`
	Detail      int    `json:"detail"`
	Seed        int64  `json:"seed"`
}

func newMux(d handlerDeps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, d)
	})
	mux.HandleFunc("/v1/presets", func(rw http.ResponseWriter, r *http.Request) {
		out := make([]presetSummary, 0, len(d.presets))
		for _, p := range d.presets {
			out = append(out, presetSummary{
				Name:        p.Name,
				Description: p.Description,
				Digest:      p.Digest,
				Detail:      p.Config.Detail,
				Seed:        p.Config.Seed,
			})
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"presets": out})
	})
	mux.HandleFunc("/v1/presets/", func(rw http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/v1/presets/"):]
		p, ok := presets.Find(d.presets, name)
		if !ok {
			http.Error(rw, "preset not found", http.StatusNotFound)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(p)
	})
	mux.HandleFunc("/v1/runs", func(rw http.ResponseWriter, r *http.Request) {
		if d.index == nil {
			http.Error(rw, "run index disabled", http.StatusServiceUnavailable)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := d.index.RecentRuns(r.Context(), limit)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"runs": runs})
	})
	if d.ws != nil {
		mux.HandleFunc("/v1/ws", d.ws.Handler())
	}
	return mux
}

func writeMetrics(rw http.ResponseWriter, d handlerDeps) {
	// Minimal Prometheus exposition format.
	if d.worker != nil {
		st := d.worker.Stats()
		busy := 0
		if d.worker.Busy() {
			busy = 1
		}
		fmt.Fprintf(rw, "# HELP planetforge_generations_total Finished generation requests by outcome.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_generations_total counter\n")
		fmt.Fprintf(rw, "planetforge_generations_total{outcome=%q} %d\n", "ok", st.Generated)
		fmt.Fprintf(rw, "planetforge_generations_total{outcome=%q} %d\n", "error", st.Failed)
		fmt.Fprintf(rw, "planetforge_generations_total{outcome=%q} %d\n", "busy", st.Rejected)

		fmt.Fprintf(rw, "# HELP planetforge_worker_busy Whether a generation is in flight.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_worker_busy gauge\n")
		fmt.Fprintf(rw, "planetforge_worker_busy %d\n", busy)
	}
	if d.ws != nil {
		st := d.ws.Stats()
		fmt.Fprintf(rw, "# HELP planetforge_ws_connections Open websocket connections.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_ws_connections gauge\n")
		fmt.Fprintf(rw, "planetforge_ws_connections %d\n", st.Connections)

		fmt.Fprintf(rw, "# HELP planetforge_ws_requests_total Accepted createGeometry requests.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_ws_requests_total counter\n")
		fmt.Fprintf(rw, "planetforge_ws_requests_total %d\n", st.Requests)

		fmt.Fprintf(rw, "# HELP planetforge_ws_bad_frames_total Rejected websocket messages.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_ws_bad_frames_total counter\n")
		fmt.Fprintf(rw, "planetforge_ws_bad_frames_total %d\n", st.BadFrames)
	}
	if d.index != nil {
		st := d.index.Stats()
		fmt.Fprintf(rw, "# HELP planetforge_index_queue_depth Run index writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "planetforge_index_queue_depth %d\n", st.QueueDepth)

		fmt.Fprintf(rw, "# HELP planetforge_index_dropped_total Run records dropped because the writer fell behind.\n")
		fmt.Fprintf(rw, "# TYPE planetforge_index_dropped_total counter\n")
		fmt.Fprintf(rw, "planetforge_index_dropped_total %d\n", st.DroppedTotal)
	}
	fmt.Fprintf(rw, "# HELP planetforge_presets_loaded Presets loaded at startup.\n")
	fmt.Fprintf(rw, "# TYPE planetforge_presets_loaded gauge\n")
	fmt.Fprintf(rw, "planetforge_presets_loaded %d\n", len(d.presets))
}
