package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// newMessagePayload 只解析路由需要的字段，原始载荷原样转发给收件人。
type newMessagePayload struct {
	Sender struct {
		ID string `json:"_id"`
	} `json:"sender"`
	Chat *struct {
		ID    string `json:"_id"`
		Users []struct {
			ID string `json:"_id"`
		} `json:"users"`
	} `json:"chatId"`
}

// handleNewMessage 把一条已持久化的消息扇出给聊天的其他成员。
// 投递走每个成员的个人房间而不是聊天房间，不在线的成员直接错过
// 实时事件（消息本身已落库，可以走历史接口补齐）。
// 载荷缺聊天或成员列表时丢弃并记日志，发送方收不到任何错误。
func handleNewMessage(reg *Registry, c *Client, data json.RawMessage) {
	var payload newMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn().Err(err).Str("user_id", c.userID).Msg("drop malformed new message")
		return
	}
	if payload.Chat == nil || len(payload.Chat.Users) == 0 {
		log.Warn().Str("user_id", c.userID).Msg("drop new message without chat users")
		return
	}
	frame := encodeFrame("message received", data)
	for _, member := range payload.Chat.Users {
		if member.ID == "" || member.ID == payload.Sender.ID {
			continue
		}
		reg.Emit(member.ID, frame)
	}
}
