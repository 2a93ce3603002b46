package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub serves viewer WebSocket sessions and fans events out to all of
// them. Channel lifecycle is owned by the embedded registry: connect
// registers, any transport error unregisters.
type Hub struct {
	registry *Registry
	metrics  *services.MetricsService

	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

func NewHub(metrics *services.MetricsService, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		registry:     NewRegistry(),
		metrics:      metrics,
		pingInterval: 30 * time.Second,
		pongTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// SetPingInterval sets the keepalive ping interval for viewer connections.
func (h *Hub) SetPingInterval(interval time.Duration) {
	h.pingInterval = interval
}

// SetPongTimeout sets how long a silent connection survives.
func (h *Hub) SetPongTimeout(timeout time.Duration) {
	h.pongTimeout = timeout
}

// SetWriteTimeout bounds each per-channel send during a broadcast.
func (h *Hub) SetWriteTimeout(timeout time.Duration) {
	h.writeTimeout = timeout
}

// Registry exposes the connection registry for liveness reporting.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// wsChannel adapts a gorilla connection to the Channel contract. Data
// writes are serialized under the mutex; control frames go through
// WriteControl, which gorilla allows concurrently.
type wsChannel struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

func (c *wsChannel) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsChannel) Close() error {
	return c.conn.Close()
}

// HandleWebSocket upgrades the request and serves the viewer session
// until the connection drops. Viewers only listen; inbound frames are
// drained for keepalive accounting and otherwise discarded.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	ch := &wsChannel{conn: conn, writeTimeout: h.writeTimeout}
	h.registry.Register(ch)
	h.metrics.RecordViewerConnected()
	h.logger.Infow("viewer connected", "remote", r.RemoteAddr, "viewers", h.registry.Len())

	defer func() {
		h.registry.Unregister(ch)
		h.metrics.RecordViewerDisconnected()
		conn.Close()
		h.logger.Infow("viewer disconnected", "remote", r.RemoteAddr, "viewers", h.registry.Len())
	}()

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(h.pingInterval)
	defer pingTicker.Stop()

	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		}
	}()

	for {
		select {
		case <-pingTicker.C:
			deadline := time.Now().Add(h.writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.logger.Debugw("ping failed", "remote", r.RemoteAddr, "error", err)
				return
			}

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Infow("viewer read error", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
	}
}

// Broadcast serializes the event once and sends the identical bytes to
// every channel registered at call time. Sends run concurrently and each
// is bounded by the write timeout; a failed send drops that channel and
// is never reported to the caller.
func (h *Hub) Broadcast(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("event serialization failed", "kind", event.Kind, "error", err)
		return
	}

	snapshot := h.registry.Snapshot()
	h.logger.Infow("broadcasting event", "kind", event.Kind, "viewers", len(snapshot))

	var wg sync.WaitGroup
	for _, ch := range snapshot {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := h.send(ch, data); err != nil {
				h.logger.Debugw("send failed, dropping channel", "kind", event.Kind, "error", err)
			}
		}(ch)
	}
	wg.Wait()

	h.metrics.RecordBroadcast(len(snapshot))
}

// send delivers to one channel; failure is treated as an implicit
// disconnect signal.
func (h *Hub) send(ch Channel, data []byte) error {
	if err := ch.WriteMessage(data); err != nil {
		h.registry.Unregister(ch)
		ch.Close()
		h.metrics.RecordSendFailure()
		return err
	}
	return nil
}
