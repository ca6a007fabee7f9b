package websockets

import (
	"encoding/json"
	"sync"
	"time"

	"printfleet/internal/events"
	"printfleet/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeTimeout = 10 * time.Second
	readLimit    = 4096
)

// Manager pushes schedule progress events to connected dashboards. The
// socket is one-way apart from ping/pong, so there is no per-client state
// beyond the connection itself.
type Manager struct {
	eventBus *events.EventBus
	log      logger.Logger
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
}

func New(eventBus *events.EventBus) (*Manager, error) {
	manager := &Manager{
		eventBus: eventBus,
		log:      logger.New("websockets"),
		clients:  make(map[*websocket.Conn]bool),
	}

	err := eventBus.Subscribe(events.SCHEDULE_PROGRESS_CHANNEL, manager.broadcast)
	if err != nil {
		return nil, manager.log.Err("failed to subscribe to progress channel", err)
	}

	return manager, nil
}

// Upgrade gates the route so plain HTTP requests get a 426 instead of a
// hung connection.
func (m *Manager) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (m *Manager) Handler() fiber.Handler {
	return websocket.New(m.serve)
}

func (m *Manager) serve(conn *websocket.Conn) {
	log := m.log.Function("serve")

	m.register(conn)
	defer m.unregister(conn)

	conn.SetReadLimit(readLimit)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var message events.Event
		if err := json.Unmarshal(payload, &message); err != nil {
			continue
		}

		if message.Type == events.PING {
			m.send(conn, events.Event{Type: events.PONG, Timestamp: time.Now()})
		}
	}
}

func (m *Manager) register(conn *websocket.Conn) {
	m.mu.Lock()
	m.clients[conn] = true
	count := len(m.clients)
	m.mu.Unlock()

	m.log.Info("client connected", "clients", count)
}

func (m *Manager) unregister(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, conn)
	count := len(m.clients)
	m.mu.Unlock()

	_ = conn.Close()
	m.log.Info("client disconnected", "clients", count)
}

func (m *Manager) send(conn *websocket.Conn, event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func (m *Manager) broadcast(event events.Event) error {
	log := m.log.Function("broadcast")

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn("failed to write to client, dropping", "error", err)
			delete(m.clients, conn)
			_ = conn.Close()
		}
	}

	return nil
}

// Close terminates every open connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		_ = conn.Close()
	}
	m.clients = make(map[*websocket.Conn]bool)
}
