package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/models"
	"tasktracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	logger.InitNop()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func TestHub_DeliversToAudienceAndAdmins(t *testing.T) {
	h := startHub(t)
	alice, bob, admin := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Join(&Client{Conn: alice, UserID: "alice", Role: models.RoleUser})
	h.Join(&Client{Conn: bob, UserID: "bob", Role: models.RoleUser})
	h.Join(&Client{Conn: admin, UserID: "root", Role: models.RoleAdmin})
	require.Equal(t, 3, h.ClientCount())

	h.Notify(models.TaskEvent{Type: models.EventTaskCreated, TaskID: "t1", ActorID: "alice", Audience: []string{"alice"}})

	assert.Eventually(t, func() bool { return alice.received() == 1 && admin.received() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, bob.received())

	var got map[string]any
	alice.mu.Lock()
	defer alice.mu.Unlock()
	require.NoError(t, json.Unmarshal(alice.messages[0], &got))
	assert.Equal(t, "task.created", got["type"])
	assert.NotContains(t, got, "audience")
}

func TestHub_DropsClientOnWriteError(t *testing.T) {
	h := startHub(t)
	broken := &fakeConn{fail: true}
	h.Join(&Client{Conn: broken, UserID: "alice", Role: models.RoleUser})

	h.Notify(models.TaskEvent{Type: models.EventTaskDeleted, TaskID: "t1", Audience: []string{"alice"}})

	assert.Eventually(t, broken.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_LeaveClosesConnection(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{}
	client := &Client{Conn: conn, UserID: "alice"}
	h.Join(client)
	h.Leave(client)

	assert.Equal(t, 0, h.ClientCount())
	assert.True(t, conn.isClosed())
}

func TestHub_StoppedHubNeverBlocks(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{}
	h.Join(&Client{Conn: conn, UserID: "alice"})
	h.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Notify(models.TaskEvent{Type: models.EventTaskUpdated})
		}
		h.Leave(&Client{Conn: &fakeConn{}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub blocked after Stop")
	}
	assert.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)
}
