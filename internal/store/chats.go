package store

import (
	"context"
	"errors"
	"time"

	"github.com/Yashraval366/Chat-App/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChatsStore 封装 chats 集合的全部读写。
type ChatsStore struct {
	coll *mongo.Collection
}

func NewChatsStore(coll *mongo.Collection) *ChatsStore {
	return &ChatsStore{coll: coll}
}

// AccessDirect 获取两人之间的单聊，不存在则创建，重复调用幂等。
func (s *ChatsStore) AccessDirect(ctx context.Context, userID, otherID string) (*models.Chat, error) {
	a, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	b, err := parseID(otherID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"isGroup": false,
		"users":   bson.M{"$all": bson.A{a, b}, "$size": 2},
	}
	var chat models.Chat
	err = s.coll.FindOne(ctx, filter).Decode(&chat)
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	now := time.Now()
	chat = models.Chat{
		IsGroup:   false,
		Users:     []bson.ObjectID{a, b},
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := s.coll.InsertOne(ctx, &chat)
	if err != nil {
		return nil, err
	}
	chat.ID = result.InsertedID.(bson.ObjectID)
	return &chat, nil
}

// CreateGroup 创建群聊，adminID 自动并入成员列表。
func (s *ChatsStore) CreateGroup(ctx context.Context, name string, memberIDs []string, adminID string) (*models.Chat, error) {
	admin, err := parseID(adminID)
	if err != nil {
		return nil, err
	}
	users := []bson.ObjectID{admin}
	seen := map[bson.ObjectID]struct{}{admin: {}}
	for _, id := range memberIDs {
		oid, err := parseID(id)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[oid]; ok {
			continue
		}
		seen[oid] = struct{}{}
		users = append(users, oid)
	}
	now := time.Now()
	chat := models.Chat{
		ChatName:   name,
		IsGroup:    true,
		Users:      users,
		GroupAdmin: admin,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	result, err := s.coll.InsertOne(ctx, &chat)
	if err != nil {
		return nil, err
	}
	chat.ID = result.InsertedID.(bson.ObjectID)
	return &chat, nil
}

// FindByID 查找聊天，查不到返回 (nil, nil)。
func (s *ChatsStore) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var chat models.Chat
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListForUser 返回包含该用户的所有聊天，最近更新的在前。
func (s *ChatsStore) ListForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	oid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"users": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	chats := []models.Chat{}
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// Rename 修改群名，聊天不存在返回 (nil, nil)。
func (s *ChatsStore) Rename(ctx context.Context, chatID, name string) (*models.Chat, error) {
	return s.findAndUpdate(ctx, chatID, bson.M{
		"$set": bson.M{"chatName": name, "updatedAt": time.Now()},
	})
}

// AddMember 把用户加入群聊，重复加入是空操作（$addToSet）。
func (s *ChatsStore) AddMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	oid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.findAndUpdate(ctx, chatID, bson.M{
		"$addToSet": bson.M{"users": oid},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

// RemoveMember 把用户移出群聊。
func (s *ChatsStore) RemoveMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	oid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.findAndUpdate(ctx, chatID, bson.M{
		"$pull": bson.M{"users": oid},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// SetLatestMessage 更新聊天的最新消息引用并刷新排序时间。
func (s *ChatsStore) SetLatestMessage(ctx context.Context, chatID string, messageID bson.ObjectID) error {
	oid, err := parseID(chatID)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"latestMessage": messageID, "updatedAt": time.Now()},
	})
	return err
}

func (s *ChatsStore) findAndUpdate(ctx context.Context, chatID string, update bson.M) (*models.Chat, error) {
	oid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var chat models.Chat
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}
