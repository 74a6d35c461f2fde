package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "planetforge.ai/internal/persistence/log"
	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/presets"
	"planetforge.ai/internal/transport/ws"
	"planetforge.ai/internal/tuning"
	"planetforge.ai/internal/worker"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		presetDir  = flag.String("presets", "", "preset directory (default: <configs>/presets)")
		presetSrc  = flag.String("preset_src", "", "remote preset source fetched into <data>/presets (go-getter syntax)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	ctx, cancel := signalContext()
	defer cancel()

	pd := strings.TrimSpace(*presetDir)
	if pd == "" {
		pd = filepath.Join(*configDir, "presets")
	}
	if src := strings.TrimSpace(*presetSrc); src != "" {
		pd = filepath.Join(*dataDir, "presets", strconv.FormatInt(time.Now().Unix(), 10))
		if err := presets.Fetch(ctx, src, pd); err != nil {
			logger.Fatalf("fetch presets: %v", err)
		}
		logger.Printf("fetched presets from %s into %s", src, pd)
	}
	list, err := presets.LoadDir(pd, tune.MaxDetail)
	if err != nil && !os.IsNotExist(err) {
		logger.Fatalf("load presets: %v", err)
	}
	logger.Printf("loaded %d presets from %s", len(list), pd)

	idx, err := openRunIndex(*dataDir, *disableDB, logger)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertPresets(ctx, presetRows(list)); err != nil {
			logger.Printf("index backend: upsert presets: %v", err)
		}
	}

	runLog := persistlog.NewRunLogger(*dataDir, logger)
	defer runLog.Close()
	recorders := worker.Recorders{runLog}
	if idx != nil {
		recorders = append(recorders, idx)
	}

	genLogger := log.New(os.Stdout, "[worker] ", log.LstdFlags|log.Lmicroseconds)
	w := worker.New(worker.Config{
		Options: planet.Options{
			Logger:      genLogger,
			Verbosity:   tune.LogVerbosity,
			Parallelism: tune.Parallelism,
			MaxDetail:   tune.MaxDetail,
		},
		Recorder: recorders,
	}, genLogger)
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("worker stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, ws.Options{
		MaxMessageBytes:  tune.MaxMessageBytes,
		ReadTimeout:      tune.ReadTimeout(),
		WriteTimeout:     tune.WriteTimeout(),
		CompressGeometry: tune.CompressGeometry,
		DefaultScatter:   tune.DefaultScatter,
	}, logger)

	mux := newMux(handlerDeps{
		worker:  w,
		ws:      wsSrv,
		index:   idx,
		presets: list,
	})
	if envBool("PF_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (PF_ENABLE_PPROF_HTTP=false)")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
