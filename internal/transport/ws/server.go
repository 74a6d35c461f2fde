package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/protocol"
	"planetforge.ai/internal/worker"
)

// Generator is the worker side of the connection.
type Generator interface {
	Generate(ctx context.Context, id string, cfg planet.Config) worker.Response
}

type Options struct {
	MaxMessageBytes  int64
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CompressGeometry bool
	// DefaultScatter applies when a request omits data.scatter.
	DefaultScatter float64
}

type Server struct {
	gen  Generator
	log  *log.Logger
	opts Options

	upgrader websocket.Upgrader

	conns     atomic.Int64
	requests  atomic.Uint64
	badFrames atomic.Uint64
}

func NewServer(gen Generator, opts Options, logger *log.Logger) *Server {
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = 1 << 20
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Server{
		gen:  gen,
		log:  logger,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

type outFrame struct {
	kind int
	data []byte
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(s.opts.MaxMessageBytes)

		s.conns.Add(1)
		defer s.conns.Add(-1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := make(chan outFrame, 4)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case f := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
					if err := conn.WriteMessage(f.kind, f.data); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.handleMessage(ctx, msg, out)
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, msg []byte, out chan<- outFrame) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.badFrames.Add(1)
		s.sendError(ctx, out, "", protocol.ErrProtoBadRequest, "bad json")
		return
	}
	if base.Type != protocol.TypeCreateGeometry {
		s.badFrames.Add(1)
		s.sendError(ctx, out, base.ID, protocol.ErrProtoBadRequest, "unsupported message type "+base.Type)
		return
	}
	if base.ProtocolVersion != "" && base.ProtocolVersion != protocol.Version {
		s.badFrames.Add(1)
		s.sendError(ctx, out, base.ID, protocol.ErrProtoBadRequest, "bad protocol_version")
		return
	}
	req, err := protocol.DecodeCreateGeometry(msg)
	if err != nil {
		s.badFrames.Add(1)
		s.sendError(ctx, out, base.ID, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	if !req.ScatterSet {
		req.Config.Scatter = s.opts.DefaultScatter
	}
	s.requests.Add(1)

	// The reader keeps going so a second request while this one runs gets
	// an immediate busy error instead of queueing.
	go func() {
		resp := s.gen.Generate(ctx, req.ID, req.Config)
		if resp.Err != nil {
			s.sendError(ctx, out, resp.ID, resp.Code, resp.Err.Error())
			return
		}
		if req.Encoding == protocol.EncodingJSON {
			b, err := json.Marshal(protocol.NewGeometryMsg(resp.ID, resp.Result))
			if err != nil {
				s.sendError(ctx, out, resp.ID, protocol.ErrInternal, err.Error())
				return
			}
			enqueue(ctx, out, outFrame{kind: websocket.TextMessage, data: b})
			return
		}
		frame, err := protocol.EncodeGeometryFrame(resp.ID, resp.Result, s.opts.CompressGeometry)
		if err != nil {
			s.sendError(ctx, out, resp.ID, protocol.ErrInternal, err.Error())
			return
		}
		enqueue(ctx, out, outFrame{kind: websocket.BinaryMessage, data: frame})
	}()
}

func (s *Server) sendError(ctx context.Context, out chan<- outFrame, id, code, message string) {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
	}
	b, err := json.Marshal(protocol.NewError(id, code, message))
	if err != nil {
		return
	}
	if s.log != nil {
		s.log.Printf("[ws] error id=%s code=%s: %s", id, code, message)
	}
	enqueue(ctx, out, outFrame{kind: websocket.TextMessage, data: b})
}

func enqueue(ctx context.Context, out chan<- outFrame, f outFrame) {
	select {
	case out <- f:
	case <-ctx.Done():
	}
}

type Stats struct {
	Connections int64
	Requests    uint64
	BadFrames   uint64
}

func (s *Server) Stats() Stats {
	return Stats{
		Connections: s.conns.Load(),
		Requests:    s.requests.Load(),
		BadFrames:   s.badFrames.Load(),
	}
}
