package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Yashraval366/Chat-App/internal/models"
	"github.com/Yashraval366/Chat-App/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrEmailTaken 表示邮箱已被占用（users.email 唯一索引冲突）。
var ErrEmailTaken = errors.New("email taken")

// UsersStore 封装 users 集合的全部读写。
type UsersStore struct {
	coll *mongo.Collection
}

func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// FindByEmail 按规范化后的邮箱查找用户，查不到返回 (nil, nil)。
func (s *UsersStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 按 hex id 查找用户，查不到返回 (nil, nil)。
func (s *UsersStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 插入新用户并回填生成的 id，邮箱冲突返回 ErrEmailTaken。
func (s *UsersStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.Email = normalize.Email(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Tokens == nil {
		user.Tokens = []string{}
	}
	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// Update 修改用户资料，只更新调用方给出的字段，用户不存在返回 (nil, nil)。
func (s *UsersStore) Update(ctx context.Context, id string, name, bio *string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now()}
	if name != nil {
		set["name"] = *name
	}
	if bio != nil {
		set["bio"] = *bio
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Search 对姓名和邮箱做大小写不敏感的子串匹配，并始终排除请求者自己。
func (s *UsersStore) Search(ctx context.Context, query, excludeID string) ([]models.User, error) {
	oid, err := parseID(excludeID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": bson.M{"$ne": oid}}
	if query != "" {
		pattern := regexp.QuoteMeta(query)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AppendToken 把 token 原子追加到用户的活跃集合。
func (s *UsersStore) AppendToken(ctx context.Context, userID, token string) error {
	oid, err := parseID(userID)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// RemoveToken 原子移除 token，token 不在集合里时是空操作。
func (s *UsersStore) RemoveToken(ctx context.Context, userID, token string) error {
	oid, err := parseID(userID)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// HasToken 检查 token 是否仍在用户的活跃集合中。
func (s *UsersStore) HasToken(ctx context.Context, userID, token string) (bool, error) {
	oid, err := parseID(userID)
	if err != nil {
		return false, err
	}
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid, "tokens": token})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
