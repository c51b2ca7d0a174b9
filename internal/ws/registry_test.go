package ws

import (
	"sync"
	"testing"
)

func newTestClient(userID string) *Client {
	return &Client{
		send:   make(chan []byte, 256),
		userID: userID,
		rooms:  make(map[string]struct{}),
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if reg.Online("any") != 0 {
		t.Error("Online() for empty registry should be 0")
	}
}

func TestRegistry_JoinLeave(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("u1")

	reg.Join("room1", c)
	if reg.Online("room1") != 1 {
		t.Errorf("Online() after join = %d, want 1", reg.Online("room1"))
	}

	reg.Leave("room1", c)
	if reg.Online("room1") != 0 {
		t.Errorf("Online() after leave = %d, want 0", reg.Online("room1"))
	}
}

func TestRegistry_JoinIsAdditive(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("u1")

	reg.Join("u1", c)
	reg.Join("chat1", c)
	reg.Join("chat2", c)

	for _, room := range []string{"u1", "chat1", "chat2"} {
		if reg.Online(room) != 1 {
			t.Errorf("Online(%q) = %d, want 1", room, reg.Online(room))
		}
	}
}

func TestRegistry_DropReleasesAllRooms(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("u1")

	reg.Join("u1", c)
	reg.Join("chat1", c)
	reg.Drop(c)

	if reg.Online("u1") != 0 || reg.Online("chat1") != 0 {
		t.Error("Drop() should release every room membership")
	}

	// Drop is idempotent; a second call must not panic on the closed channel
	reg.Drop(c)

	// joining after drop is ignored
	reg.Join("chat2", c)
	if reg.Online("chat2") != 0 {
		t.Error("Join() after Drop() should be a no-op")
	}
}

func TestRegistry_Emit(t *testing.T) {
	reg := NewRegistry()
	c1 := newTestClient("u1")
	c2 := newTestClient("u2")
	reg.Join("chat1", c1)
	reg.Join("chat1", c2)

	frame := []byte(`{"event":"typing"}`)
	reg.Emit("chat1", frame)

	for i, c := range []*Client{c1, c2} {
		select {
		case got := <-c.send:
			if string(got) != string(frame) {
				t.Errorf("client %d got %s, want %s", i, got, frame)
			}
		default:
			t.Errorf("client %d did not receive frame", i)
		}
	}
}

func TestRegistry_EmitExcept(t *testing.T) {
	reg := NewRegistry()
	emitter := newTestClient("u1")
	other := newTestClient("u2")
	reg.Join("chat1", emitter)
	reg.Join("chat1", other)

	reg.EmitExcept("chat1", emitter, []byte(`{"event":"typing"}`))

	select {
	case <-emitter.send:
		t.Error("emitter should not receive its own signal")
	default:
	}
	select {
	case <-other.send:
	default:
		t.Error("other member should receive the signal")
	}
}

// 慢消费者（发送缓冲已满）在广播时被淘汰，其余成员不受影响。
func TestRegistry_EmitDropsStalledConsumer(t *testing.T) {
	reg := NewRegistry()
	stalled := &Client{send: make(chan []byte), userID: "u1", rooms: make(map[string]struct{})}
	healthy := newTestClient("u2")
	reg.Join("chat1", stalled)
	reg.Join("chat1", healthy)

	reg.Emit("chat1", []byte(`{}`))

	if reg.Online("chat1") != 1 {
		t.Errorf("Online() after emit = %d, want 1", reg.Online("chat1"))
	}
	if !stalled.closed {
		t.Error("stalled consumer should be dropped")
	}
	select {
	case <-healthy.send:
	default:
		t.Error("healthy member should still receive the frame")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	numClients := 10

	clients := make([]*Client, numClients)
	for i := 0; i < numClients; i++ {
		clients[i] = newTestClient("u")
	}
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			reg.Join("chat1", c)
			reg.Emit("chat1", []byte(`{}`))
		}(c)
	}
	wg.Wait()

	if reg.Online("chat1") != numClients {
		t.Errorf("Online() after concurrent joins = %d, want %d", reg.Online("chat1"), numClients)
	}
}
