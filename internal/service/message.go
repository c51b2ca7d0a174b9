package service

import (
	"context"

	"github.com/Yashraval366/Chat-App/internal/models"

	"github.com/rs/zerolog/log"
)

// MessageStore 是消息存储的最小接口。
type MessageStore interface {
	Create(ctx context.Context, senderID, chatID, body string) (*models.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]models.Message, error)
}

// MessageService 封装消息相关的业务逻辑。
// 持久化与实时投递互相独立：这里只负责落库，
// 实时转发由调用方拿着持久化结果走 websocket。
type MessageService struct {
	msgs  MessageStore
	chats ChatStore
}

func NewMessageService(msgs MessageStore, chats ChatStore) *MessageService {
	return &MessageService{msgs: msgs, chats: chats}
}

// Send 持久化一条消息并刷新所在聊天的最新消息引用。
func (s *MessageService) Send(ctx context.Context, senderID, chatID, body string) (*models.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	msg, err := s.msgs.Create(ctx, senderID, chatID, body)
	if err != nil {
		return nil, err
	}
	// 最新消息引用只影响聊天列表排序，失败不影响消息本身
	if err := s.chats.SetLatestMessage(ctx, chatID, msg.ID); err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("set latest message")
	}
	return msg, nil
}

// History 返回聊天的全部消息，按时间升序。
func (s *MessageService) History(ctx context.Context, chatID string) ([]models.Message, error) {
	return s.msgs.ListByChat(ctx, chatID)
}
