package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"planetforge.ai/internal/planet"
	"planetforge.ai/internal/protocol"
	"planetforge.ai/internal/worker"
)

func startServer(t *testing.T, opts Options) (*Server, *websocket.Conn) {
	t.Helper()
	w := worker.New(worker.Config{Options: planet.Options{Parallelism: 1}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()

	s := NewServer(w, opts, nil)
	srv := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Close()
		cancel()
	})
	return s, conn
}

func send(t *testing.T, conn *websocket.Conn, v string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(v)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) (int, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	kind, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return kind, b
}

const createReq = `{"type":"createGeometry","protocol_version":"1.0","id":"g1","data":{"detail":1,"seed":4,"biome":{"terrain":{"min":-0.05,"max":0.05},"vegetation":[{"name":"tree","density":5}]}}}`

func TestServer_BinaryGeometry(t *testing.T) {
	s, conn := startServer(t, Options{CompressGeometry: true, DefaultScatter: 0.3})
	send(t, conn, createReq)
	kind, b := read(t, conn)
	if kind != websocket.BinaryMessage {
		t.Fatalf("kind=%d body=%s", kind, b)
	}
	hdr, g, err := protocol.DecodeGeometryFrame(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hdr.ID != "g1" || g.FaceCount() != 80 || len(g.Positions) != 720 {
		t.Fatalf("hdr=%+v faces=%d", hdr, g.FaceCount())
	}
	if _, ok := g.Vegetation["tree"]; !ok {
		t.Fatalf("vegetation=%v", g.Vegetation)
	}
	if st := s.Stats(); st.Requests != 1 || st.Connections != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestServer_JSONGeometry(t *testing.T) {
	_, conn := startServer(t, Options{})
	send(t, conn, `{"type":"createGeometry","encoding":"json","data":{"detail":0,"biome":{}}}`)
	kind, b := read(t, conn)
	if kind != websocket.TextMessage {
		t.Fatalf("kind=%d", kind)
	}
	var msg protocol.GeometryMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != protocol.TypeGeometry || msg.ID == "" || msg.Stats.Faces != 20 || len(msg.Geometry.Normals) != 180 {
		t.Fatalf("msg type=%s id=%q stats=%+v", msg.Type, msg.ID, msg.Stats)
	}
}

func TestServer_Errors(t *testing.T) {
	s, conn := startServer(t, Options{})
	cases := []struct {
		req  string
		code string
	}{
		{`{"type":"hello"}`, protocol.ErrProtoBadRequest},
		{`not json`, protocol.ErrProtoBadRequest},
		{`{"type":"createGeometry","protocol_version":"0.1","data":{"biome":{}}}`, protocol.ErrProtoBadRequest},
		{`{"type":"createGeometry","data":{"detail":-3,"biome":{}}}`, protocol.ErrProtoBadRequest},
		{`{"type":"createGeometry","id":"p","data":{"shape":"plane","biome":{}}}`, protocol.ErrUnsupportedShape},
		{`{"type":"createGeometry","id":"q","data":{"biome":{"terrain":{"min":1,"max":0}}}}`, protocol.ErrBadConfig},
	}
	for _, c := range cases {
		send(t, conn, c.req)
		kind, b := read(t, conn)
		if kind != websocket.TextMessage {
			t.Fatalf("%s: kind=%d", c.req, kind)
		}
		var msg protocol.ErrorMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("%s: %v", c.req, err)
		}
		if msg.Type != protocol.TypeError || msg.Code != c.code || msg.Message == "" {
			t.Fatalf("%s: got %+v want code %s", c.req, msg, c.code)
		}
	}
	if st := s.Stats(); st.BadFrames != 4 || st.Requests != 2 {
		t.Fatalf("stats=%+v", st)
	}
}
