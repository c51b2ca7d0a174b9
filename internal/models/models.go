package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User 对应 users 集合，密码哈希和 token 列表永远不会序列化到响应中。
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string        `bson:"name" json:"name"`
	Email      string        `bson:"email" json:"email"`
	Password   string        `bson:"password" json:"-"`
	Bio        string        `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePic string        `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Tokens     []string      `bson:"tokens" json:"-"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Chat 对应 chats 集合，Users 是成员 id 列表，单聊固定两个成员。
type Chat struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ChatName      string          `bson:"chatName,omitempty" json:"chatName,omitempty"`
	IsGroup       bool            `bson:"isGroup" json:"isGroup"`
	Users         []bson.ObjectID `bson:"users" json:"users"`
	GroupAdmin    bson.ObjectID   `bson:"groupAdmin,omitempty" json:"groupAdmin,omitempty"`
	LatestMessage bson.ObjectID   `bson:"latestMessage,omitempty" json:"latestMessage,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Message 对应 messages 集合，创建后不可变。
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    bson.ObjectID `bson:"sender" json:"sender"`
	Chat      bson.ObjectID `bson:"chat" json:"chat"`
	Message   string        `bson:"message" json:"message"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
