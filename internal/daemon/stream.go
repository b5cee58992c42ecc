package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"reach/internal/api"
	"reach/internal/logging"
	"reach/internal/persist"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type streamRegistry struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newStreamRegistry() *streamRegistry {
	return &streamRegistry{conns: make(map[string]*websocket.Conn)}
}

func (r *streamRegistry) add(id string, conn *websocket.Conn) {
	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()
}

func (r *streamRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

func (r *streamRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *streamRegistry) closeAll() {
	r.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

// handleStream pushes the selection on connect and after every change,
// whichever context made it. Clients only read.
func (s *apiServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger := s.log().With(slog.String("subscriber_id", id))
	s.streams.add(id, conn)
	defer s.streams.remove(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changed := make(chan struct{}, 1)
	unsubscribe := s.daemon.console.Store().Subscribe(func(persist.Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger.Debug("stream subscriber connected")
	defer logger.Debug("stream subscriber disconnected")

	send := func() bool {
		selection := s.storeView()
		msg := api.StreamMessage{Type: api.StreamSnapshot, SubscriberID: id, Selection: &selection}
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
			return false
		}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("stream write failed", logging.Error(err))
			return false
		}
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(streamPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			<-readerDone
			return
		case <-changed:
			if !send() {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

// storeView reads the store snapshot, which also reflects writes made by
// other processes.
func (s *apiServer) storeView() api.Selection {
	ctrl := s.daemon.console.Controller()
	return api.FromSnapshot(s.daemon.console.Store().Current(), s.threshold, ctrl.Phase().String())
}
