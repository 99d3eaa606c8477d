package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/game"
)

const (
	writeTimeout = 3 * time.Second
	sendBuffer   = 32
)

// client is one registered connection with a serialized outbound queue. A
// single writer goroutine drains the queue, so events reach the socket in
// the order they were enqueued.
type client struct {
	conn *websocket.Conn
	send chan []byte
	stop chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		stop: make(chan struct{}),
	}
}

// enqueue queues data for the writer. A full queue drops the event rather
// than blocking the caller; game logic never waits on a slow socket.
func (cl *client) enqueue(data []byte, logger *logrus.Logger) {
	select {
	case cl.send <- data:
	default:
		logger.Warn("outbound queue full, dropping event")
	}
}

func (cl *client) close() {
	cl.once.Do(func() { close(cl.stop) })
}

func (cl *client) writeLoop(logger *logrus.Logger) {
	for {
		select {
		case <-cl.stop:
			return
		case data := <-cl.send:
			writeWithTimeout(cl.conn, data, logger)
		}
	}
}

// ConnManager tracks the live WebSocket connections per room. It has its
// own lock and is never called back into game state, so the session lock
// can stay held while events fan out.
type ConnManager struct {
	mu     sync.Mutex
	logger *logrus.Logger
	rooms  map[string]map[string]*client // room code -> player id -> client
}

// NewConnManager returns an empty connection table.
func NewConnManager(logger *logrus.Logger) *ConnManager {
	return &ConnManager{
		logger: logger,
		rooms:  make(map[string]map[string]*client),
	}
}

// Register associates a player's connection with a room and starts its
// writer. A previous registration under the same identity is shut down;
// its handler exits on its own read error.
func (cm *ConnManager) Register(code, playerID string, conn *websocket.Conn) {
	cl := newClient(conn)

	cm.mu.Lock()
	room, ok := cm.rooms[code]
	if !ok {
		room = make(map[string]*client)
		cm.rooms[code] = room
	}
	old := room[playerID]
	room[playerID] = cl
	cm.mu.Unlock()

	if old != nil {
		old.close()
	}
	go cl.writeLoop(cm.logger)
}

// Unregister drops the player's connection, but only while conn is still
// the registered transport. A handler exiting late after a fast reconnect
// has already been replaced and leaves the new registration alone.
func (cm *ConnManager) Unregister(code, playerID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	room, ok := cm.rooms[code]
	if !ok {
		return
	}
	cl, ok := room[playerID]
	if !ok || cl.conn != conn {
		return
	}
	cl.close()
	delete(room, playerID)
	if len(room) == 0 {
		delete(cm.rooms, code)
	}
}

// Broadcast queues the event for every connection in the room. Each client
// has its own serialized writer, so per-client delivery order matches the
// order of Broadcast calls.
func (cm *ConnManager) Broadcast(code string, ev game.GameEvent) {
	cm.mu.Lock()
	clients := make([]*client, 0, len(cm.rooms[code]))
	for _, cl := range cm.rooms[code] {
		clients = append(clients, cl)
	}
	cm.mu.Unlock()

	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		cm.logger.Errorf("failed to marshal broadcast event %s for room %s: %v", ev.Type, code, err)
		return
	}
	for _, cl := range clients {
		cl.enqueue(data, cm.logger)
	}
}

// SendTo queues the event for a single player in the room.
func (cm *ConnManager) SendTo(code, playerID string, ev game.GameEvent) {
	cm.mu.Lock()
	cl := cm.rooms[code][playerID]
	cm.mu.Unlock()
	if cl == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		cm.logger.Errorf("failed to marshal private event %s for player %s: %v", ev.Type, playerID, err)
		return
	}
	cl.enqueue(data, cm.logger)
}

func writeWithTimeout(conn *websocket.Conn, data []byte, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		logger.Warnf("failed to write WebSocket message: %v", err)
	}
}
