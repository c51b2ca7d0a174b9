package ws

import (
	"encoding/json"

	"github.com/Yashraval366/Chat-App/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Frame 是 websocket 上双向事件的统一帧格式。
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(event string, data json.RawMessage) []byte {
	b, _ := json.Marshal(Frame{Event: event, Data: data})
	return b
}

type handlerFunc func(reg *Registry, c *Client, data json.RawMessage)

// handlers 是事件名到处理函数的显式分发表，
// 处理函数不依赖活的传输层，可以直接单测。
var handlers = map[string]handlerFunc{
	"setup":       handleSetup,
	"join room":   handleJoinRoom,
	"typing":      handleTyping,
	"stop typing": handleStopTyping,
	"new message": handleNewMessage,
}

// Dispatch 解析入站帧并路由到对应处理函数。格式错误或未知事件
// 只记日志后丢弃，不向发送方回传协议错误。
func Dispatch(reg *Registry, c *Client, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Debug().Err(err).Str("user_id", c.userID).Msg("drop malformed frame")
		return
	}
	h, ok := handlers[f.Event]
	if !ok {
		log.Debug().Str("event", f.Event).Str("user_id", c.userID).Msg("drop unknown event")
		return
	}
	metrics.WsEventsTotal.WithLabelValues(f.Event).Inc()
	h(reg, c, f.Data)
}

// handleSetup 把连接绑进自己的个人房间并回 connected。
// 身份来自升级时校验过的 token，不接受载荷里自报的 id。
func handleSetup(reg *Registry, c *Client, _ json.RawMessage) {
	reg.Join(c.userID, c)
	reg.send(c, encodeFrame("connected", nil))
}

// handleJoinRoom 订阅一个聊天房间，载荷是聊天 id 字符串。
func handleJoinRoom(reg *Registry, c *Client, data json.RawMessage) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil || room == "" {
		log.Debug().Str("user_id", c.userID).Msg("drop join room without chat id")
		return
	}
	reg.Join(room, c)
}

func handleTyping(reg *Registry, c *Client, data json.RawMessage) {
	forwardTyping(reg, c, "typing", data)
}

func handleStopTyping(reg *Registry, c *Client, data json.RawMessage) {
	forwardTyping(reg, c, "stop typing", data)
}

// forwardTyping 把输入状态转发给聊天房间里除发出者以外的所有连接。
func forwardTyping(reg *Registry, c *Client, event string, data json.RawMessage) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil || room == "" {
		log.Debug().Str("user_id", c.userID).Str("event", event).Msg("drop typing signal without chat id")
		return
	}
	reg.EmitExcept(room, c, encodeFrame(event, data))
}
