package store

import (
	"context"
	"time"

	"github.com/Yashraval366/Chat-App/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore 封装 messages 集合，消息只追加不修改。
type MessagesStore struct {
	coll *mongo.Collection
}

func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// Create 持久化一条新消息并回填生成的 id。
func (s *MessagesStore) Create(ctx context.Context, senderID, chatID, body string) (*models.Message, error) {
	sender, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	chat, err := parseID(chatID)
	if err != nil {
		return nil, err
	}
	msg := models.Message{
		Sender:    sender,
		Chat:      chat,
		Message:   body,
		CreatedAt: time.Now(),
	}
	result, err := s.coll.InsertOne(ctx, &msg)
	if err != nil {
		return nil, err
	}
	msg.ID = result.InsertedID.(bson.ObjectID)
	return &msg, nil
}

// ListByChat 返回聊天的全部消息，按插入顺序升序。
func (s *MessagesStore) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	chat, err := parseID(chatID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"chat": chat}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
