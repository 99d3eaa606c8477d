package handlers

import (
	"testing"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func registeredConn(cm *ConnManager, code, playerID string) *websocket.Conn {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cl := cm.rooms[code][playerID]
	if cl == nil {
		return nil
	}
	return cl.conn
}

func TestUnregisterOnlyDropsOwnConn(t *testing.T) {
	cm := NewConnManager(quietLogger())
	c1 := new(websocket.Conn)
	c2 := new(websocket.Conn)

	cm.Register("R1", "alice", c1)
	// A fast reconnect replaces the transport before the old handler exits.
	cm.Register("R1", "alice", c2)

	// The old handler's unregister must not touch the new registration.
	cm.Unregister("R1", "alice", c1)
	assert.Same(t, c2, registeredConn(cm, "R1", "alice"))

	cm.Unregister("R1", "alice", c2)
	assert.Nil(t, registeredConn(cm, "R1", "alice"))

	cm.mu.Lock()
	_, ok := cm.rooms["R1"]
	cm.mu.Unlock()
	assert.False(t, ok, "empty room entry should be removed")
}

func TestClientQueueIsOrderedAndDropsWhenFull(t *testing.T) {
	logger := quietLogger()
	cl := &client{send: make(chan []byte, sendBuffer), stop: make(chan struct{})}

	cl.enqueue([]byte("one"), logger)
	cl.enqueue([]byte("two"), logger)
	cl.enqueue([]byte("three"), logger)
	assert.Equal(t, "one", string(<-cl.send))
	assert.Equal(t, "two", string(<-cl.send))
	assert.Equal(t, "three", string(<-cl.send))

	// A slow client fills its queue; further events drop instead of
	// blocking the enqueuer.
	for i := 0; i < sendBuffer+5; i++ {
		cl.enqueue([]byte("x"), logger)
	}
	assert.Len(t, cl.send, sendBuffer)
}
