package service

import (
	"context"

	"github.com/Yashraval366/Chat-App/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChatStore 是聊天存储的最小接口。
type ChatStore interface {
	AccessDirect(ctx context.Context, userID, otherID string) (*models.Chat, error)
	CreateGroup(ctx context.Context, name string, memberIDs []string, adminID string) (*models.Chat, error)
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]models.Chat, error)
	Rename(ctx context.Context, chatID, name string) (*models.Chat, error)
	AddMember(ctx context.Context, chatID, userID string) (*models.Chat, error)
	RemoveMember(ctx context.Context, chatID, userID string) (*models.Chat, error)
	SetLatestMessage(ctx context.Context, chatID string, messageID bson.ObjectID) error
}

// ChatService 封装单聊和群聊的业务逻辑。
type ChatService struct {
	chats ChatStore
	users UserStore
}

func NewChatService(chats ChatStore, users UserStore) *ChatService {
	return &ChatService{chats: chats, users: users}
}

// Access 获取或创建 caller 与 other 之间的单聊，对方必须存在。
func (s *ChatService) Access(ctx context.Context, callerID, otherID string) (*models.Chat, error) {
	other, err := s.users.FindByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}
	return s.chats.AccessDirect(ctx, callerID, otherID)
}

// List 返回调用者参与的全部聊天，最近活跃的在前。
func (s *ChatService) List(ctx context.Context, userID string) ([]models.Chat, error) {
	return s.chats.ListForUser(ctx, userID)
}

// CreateGroup 创建群聊，创建者自动成为管理员和成员。
func (s *ChatService) CreateGroup(ctx context.Context, adminID, name string, memberIDs []string) (*models.Chat, error) {
	return s.chats.CreateGroup(ctx, name, memberIDs, adminID)
}

// Rename 修改群名。
func (s *ChatService) Rename(ctx context.Context, chatID, name string) (*models.Chat, error) {
	chat, err := s.chats.Rename(ctx, chatID, name)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// AddMember 把用户拉进群聊。
func (s *ChatService) AddMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	chat, err := s.chats.AddMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// RemoveMember 把用户移出群聊。
func (s *ChatService) RemoveMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	chat, err := s.chats.RemoveMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}
