// Package stream serves a running simulation over WebSocket. One goroutine
// steps the simulator at the configured rate and broadcasts every frame;
// clients steer it with gesture and control messages.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server owns the simulator. Every simulator call happens under mu.
type Server struct {
	log      logr.Logger
	cfg      *config.Config
	hub      *Hub
	upgrader websocket.Upgrader

	mu     sync.Mutex
	sim    *fluid.Simulator
	snap   particles.Snapshot
	paused bool
}

// NewServer wraps sim, which must have been built from cfg.
func NewServer(cfg *config.Config, sim *fluid.Simulator, log logr.Logger) *Server {
	return &Server{
		log: log,
		cfg: cfg,
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sim:  sim,
		snap: sim.State(),
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler serves /ws for clients and / for status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleStatus)
	return mux
}

// Frame returns the current snapshot as a frame.
func (s *Server) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewFrame(s.snap, s.sim.Stats())
}

// Tick advances the simulator one step unless paused and broadcasts the
// resulting frame.
func (s *Server) Tick() (Frame, error) {
	s.mu.Lock()
	if !s.paused {
		if err := s.sim.Step(s.sim.Params().TimeStep); err != nil {
			s.mu.Unlock()
			return Frame{}, err
		}
		s.sim.SnapshotInto(&s.snap)
	}
	frame := NewFrame(s.snap, s.sim.Stats())
	s.mu.Unlock()

	if dropped := s.hub.Broadcast(frame); dropped > 0 {
		s.log.V(1).Info("dropped clients", "count", dropped, "clients", s.hub.Len())
	}
	return frame, nil
}

// Handle applies one client message.
func (s *Server) Handle(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case MsgGesture:
		if msg.Gesture == nil {
			return errors.New("stream: gesture message without gesture")
		}
		return msg.Gesture.Gesture(s.cfg.Interaction).Apply(s.sim)
	case MsgReset:
		s.sim.Reset()
		s.sim.SnapshotInto(&s.snap)
	case MsgPause:
		s.paused = true
	case MsgResume:
		s.paused = false
	default:
		return fmt.Errorf("stream: unknown message type %q", msg.Type)
	}
	return nil
}

// Run ticks at cfg.Run.Rate until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	rate := s.cfg.Run.Rate
	if rate <= 0 {
		rate = config.DefaultRate
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Tick(); err != nil {
				return err
			}
		}
	}
}

// ListenAndServe runs the simulation loop and the HTTP server until ctx is
// done or either fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr, Handler: s.Handler()}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.Run(ctx) })
	g.Go(func() error {
		s.log.Info("serving", "addr", addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(sctx)
		s.hub.CloseAll()
		return err
	})
	return g.Wait()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	st := Status{
		Step:      s.snap.Step,
		Particles: s.sim.Len(),
		Paused:    s.paused,
	}
	s.mu.Unlock()
	st.Clients = s.hub.Len()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error(err, "websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	s.hub.Add(conn)
	defer s.hub.Remove(conn)
	s.log.V(1).Info("client connected", "remote", r.RemoteAddr, "clients", s.hub.Len())

	if err := s.hub.Send(conn, s.Frame()); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.V(1).Info("websocket read failed", "remote", r.RemoteAddr, "err", err.Error())
			}
			return
		}
		if err := s.hub.Send(conn, s.reply(data)); err != nil {
			return
		}
	}
}

// reply decodes and applies one raw client message.
func (s *Server) reply(data []byte) Reply {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Reply{Type: "error", Error: fmt.Sprintf("stream: bad message: %v", err)}
	}
	if err := s.Handle(msg); err != nil {
		return Reply{Type: "error", Of: msg.Type, Error: err.Error()}
	}
	return Reply{Type: "ack", Of: msg.Type}
}
