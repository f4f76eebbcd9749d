package host

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/five82/togetter/internal/transport"
	"github.com/five82/togetter/internal/wire"
)

const (
	peerBacklog  = 8
	writeTimeout = 5 * time.Second
)

var errPeerClosed = errors.New("peer closed")
var errPeerBacklog = errors.New("peer backlog full")

// Server exposes a Host over HTTP.
type Server struct {
	host     *Host
	log      *slog.Logger
	upgrader websocket.Upgrader
	router   *mux.Router
}

// NewServer builds the routes for h.
func NewServer(h *Host, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		host: h,
		log:  logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Methods(http.MethodGet).Path(transport.SyncPath).HandlerFunc(s.sync)
	r.Methods(http.MethodGet).Path("/snapshot").HandlerFunc(s.snapshot)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(s.healthz)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.log.Debug("handled", "method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code)
	})
}

func (s *Server) snapshot(w http.ResponseWriter, _ *http.Request) {
	msg := s.host.Snapshot()
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	if _, err := w.Write(msg); err != nil {
		s.log.Warn("write snapshot failed", "error", err)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"peers":  s.host.PeerCount(),
	})
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}
	p := newWSPeer(conn)
	log := s.log.With("peer", p.id, "remote", r.RemoteAddr)
	defer p.close()

	go p.writeLoop(log)
	s.host.Attach(p)
	defer s.host.Detach(p.id)

	for {
		mt, payload, err := conn.ReadMessage()
		if err != nil {
			log.Debug("read ended", "error", err)
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		value, err := wire.DecodeSelection(payload)
		if err != nil {
			log.Warn("dropping inbound message", "error", err)
			continue
		}
		if err := s.host.HandleSelection(r.Context(), p.id, value); err != nil {
			log.Warn("selection failed", "select", value, "error", err)
		}
	}
}

// wsPeer queues outbound messages for one websocket. Send never blocks; a
// full queue drops the message.
type wsPeer struct {
	id   string
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, peerBacklog),
		done: make(chan struct{}),
	}
}

func (p *wsPeer) ID() string { return p.id }

func (p *wsPeer) Send(msg []byte) error {
	select {
	case <-p.done:
		return errPeerClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	default:
		return errPeerBacklog
	}
}

func (p *wsPeer) writeLoop(log *slog.Logger) {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.out:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				log.Warn("write failed", "error", err)
				p.close()
				return
			}
		}
	}
}

func (p *wsPeer) close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}
