// Package worker runs planet generation on its own goroutine. Callers hand
// over a config and get back either a result or an error; only one request
// is in flight at a time and extras are rejected with ErrBusy.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/protocol"
)

var (
	ErrBusy    = errors.New("worker busy")
	ErrStopped = errors.New("worker stopped")
)

// Recorder receives one record per finished request. Implementations must
// not block.
type Recorder interface {
	RecordRun(Record)
}

// Record is the bookkeeping for one request. It never carries geometry.
type Record struct {
	ID         string         `json:"id"`
	Time       time.Time      `json:"time"`
	Shape      string         `json:"shape"`
	Seed       int64          `json:"seed"`
	Detail     int            `json:"detail"`
	Faces      int            `json:"faces"`
	Vegetation map[string]int `json:"vegetation,omitempty"`
	Bytes      int            `json:"bytes"`
	DurationMS int64          `json:"duration_ms"`
	Code       string         `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type Config struct {
	Options  planet.Options
	Recorder Recorder
}

// Response is exactly one of a result or an error with its wire code.
type Response struct {
	ID     string
	Result *planet.Result
	Err    error
	Code   string
}

type genReq struct {
	ID     string
	Config planet.Config
	Resp   chan Response
}

type Worker struct {
	logger   *log.Logger
	opts     planet.Options
	recorder Recorder

	reqs     chan genReq
	busy     atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
	// generate is planet.Generate outside of tests.
	generate func(planet.Config, planet.Options) (*planet.Result, error)

	generated atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

func New(cfg Config, logger *log.Logger) *Worker {
	opts := cfg.Options
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Worker{
		logger:   logger,
		opts:     opts,
		recorder: cfg.Recorder,
		reqs:     make(chan genReq),
		done:     make(chan struct{}),
		generate: planet.Generate,
	}
}

// Run serves requests until ctx is done. A worker runs once; after Run
// returns every Generate call fails with ErrStopped.
func (w *Worker) Run(ctx context.Context) error {
	defer w.stopOnce.Do(func() { close(w.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.reqs:
			resp := w.handle(req)
			w.busy.Store(false)
			select {
			case req.Resp <- resp:
			default:
				// Caller gave up; the result is dropped.
			}
		}
	}
}

// Generate submits cfg and waits for the outcome. An empty id gets a fresh
// UUID. If another request is in flight the call fails fast with ErrBusy.
// Cancelling ctx stops the wait, not the generation.
func (w *Worker) Generate(ctx context.Context, id string, cfg planet.Config) Response {
	if id == "" {
		id = uuid.NewString()
	}
	if !w.busy.CompareAndSwap(false, true) {
		w.rejected.Add(1)
		return Response{ID: id, Err: ErrBusy, Code: protocol.ErrWorkerBusy}
	}
	resp := make(chan Response, 1)
	req := genReq{ID: id, Config: cfg, Resp: resp}

	select {
	case w.reqs <- req:
	case <-w.done:
		w.busy.Store(false)
		return stoppedResponse(id)
	case <-ctx.Done():
		w.busy.Store(false)
		return Response{ID: id, Err: ctx.Err(), Code: protocol.ErrInternal}
	}

	select {
	case r := <-resp:
		return r
	case <-w.done:
		// Run replies before it can exit, so a result may already be here.
		select {
		case r := <-resp:
			return r
		default:
			return stoppedResponse(id)
		}
	case <-ctx.Done():
		return Response{ID: id, Err: ctx.Err(), Code: protocol.ErrInternal}
	}
}

func stoppedResponse(id string) Response {
	return Response{ID: id, Err: ErrStopped, Code: protocol.ErrInternal}
}

func (w *Worker) Busy() bool { return w.busy.Load() }

type Stats struct {
	Generated uint64
	Failed    uint64
	Rejected  uint64
}

func (w *Worker) Stats() Stats {
	return Stats{
		Generated: w.generated.Load(),
		Failed:    w.failed.Load(),
		Rejected:  w.rejected.Load(),
	}
}

func (w *Worker) handle(req genReq) (resp Response) {
	start := time.Now()
	resp.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			if w.logger != nil {
				w.logger.Printf("[worker] generation panic id=%s: %v\n%s", req.ID, r, debug.Stack())
			}
			resp = Response{ID: req.ID, Err: fmt.Errorf("generation panic: %v", r), Code: protocol.ErrInternal}
		}
		if resp.Err != nil {
			w.failed.Add(1)
		} else {
			w.generated.Add(1)
		}
		w.record(req, resp, time.Since(start))
	}()

	res, err := w.generate(req.Config, w.opts)
	if err != nil {
		resp.Err = err
		resp.Code = Code(err)
		if w.logger != nil {
			w.logger.Printf("[worker] generation failed id=%s code=%s: %v", req.ID, resp.Code, err)
		}
		return resp
	}
	resp.Result = res
	return resp
}

func (w *Worker) record(req genReq, resp Response, took time.Duration) {
	if w.recorder == nil {
		return
	}
	rec := Record{
		ID:         req.ID,
		Time:       time.Now().UTC(),
		Shape:      req.Config.Shape,
		Seed:       req.Config.Seed,
		Detail:     req.Config.Detail,
		DurationMS: took.Milliseconds(),
		Code:       resp.Code,
	}
	if resp.Err != nil {
		rec.Error = resp.Err.Error()
	}
	if res := resp.Result; res != nil {
		rec.Detail = res.Stats.Detail
		rec.Faces = res.Stats.Faces
		rec.Bytes = res.Stats.Bytes
		rec.Vegetation = make(map[string]int, len(res.Geometry.Vegetation))
		for name, pts := range res.Geometry.Vegetation {
			rec.Vegetation[name] = len(pts)
		}
	}
	w.recorder.RecordRun(rec)
}

// Code maps a generation error to its wire error code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBusy):
		return protocol.ErrWorkerBusy
	case errors.Is(err, planet.ErrUnsupportedShape):
		return protocol.ErrUnsupportedShape
	case errors.Is(err, planet.ErrInvalidConfig):
		return protocol.ErrBadConfig
	default:
		return protocol.ErrInternal
	}
}

// Recorders fans a record out to several sinks.
type Recorders []Recorder

func (rs Recorders) RecordRun(r Record) {
	for _, rec := range rs {
		if rec != nil {
			rec.RecordRun(r)
		}
	}
}
