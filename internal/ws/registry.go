package ws

import (
	"sync"

	"github.com/Yashraval366/Chat-App/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Registry 维护房间到连接的映射，由进程生命周期持有并注入到
// 需要广播的地方，取代全局单例。房间按需创建，最后一个成员
// 离开时回收。
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Client]struct{})}
}

// Join 把连接加入房间，加入是叠加式的，一个连接可以同时在多个房间。
func (r *Registry) Join(room string, c *Client) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.closed {
		return
	}
	members := r.rooms[room]
	if members == nil {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Leave 把连接移出单个房间。
func (r *Registry) Leave(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(room, c)
	delete(c.rooms, room)
}

// Drop 释放连接的全部房间成员资格并关闭发送通道，可以安全地重复调用。
// 断线清理和慢消费者淘汰都走这里。同时关闭底层连接，
// 让被淘汰连接的读循环尽快退出，不再产生新事件。
func (r *Registry) Drop(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for room := range c.rooms {
		r.removeLocked(room, c)
	}
	c.rooms = map[string]struct{}{}
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	metrics.WsConnections.Dec()
}

// send 非阻塞地给单个连接投递一帧。closed 由注册表的锁保护，
// 已淘汰的连接在这里被挡住，不会打到关闭的通道上。
func (r *Registry) send(c *Client, frame []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (r *Registry) removeLocked(room string, c *Client) {
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Emit 把一帧投递给房间的全部成员。发送缓冲已满的连接视为断开，
// 收集后统一淘汰，广播过程容忍目标中途掉线。
func (r *Registry) Emit(room string, frame []byte) {
	r.emit(room, nil, frame)
}

// EmitExcept 与 Emit 相同，但跳过发出事件的连接。
func (r *Registry) EmitExcept(room string, except *Client, frame []byte) {
	r.emit(room, except, frame)
}

func (r *Registry) emit(room string, except *Client, frame []byte) {
	r.mu.RLock()
	var stalled []*Client
	for c := range r.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.send <- frame:
		default:
			stalled = append(stalled, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range stalled {
		log.Warn().Str("room", room).Str("user_id", c.userID).Msg("drop slow websocket consumer")
		r.Drop(c)
	}
}

// Online 返回房间当前的连接数。
func (r *Registry) Online(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
