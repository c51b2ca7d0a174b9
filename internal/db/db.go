package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client 包装 mongo 客户端并暴露业务集合。
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect 建立到 MongoDB 的连接，并带有简单的重试来等待容器就绪。
func Connect(ctx context.Context, uri string) (*Client, error) {
	var lastErr error
	for i := 0; i < 10; i++ {
		opts := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)
		client, err := mongo.Connect(opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				return &Client{client: client, db: client.Database("chatapp")}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, lastErr
}

func (c *Client) Users() *mongo.Collection    { return c.db.Collection("users") }
func (c *Client) Chats() *mongo.Collection    { return c.db.Collection("chats") }
func (c *Client) Messages() *mongo.Collection { return c.db.Collection("messages") }

// Close 断开与 MongoDB 的连接。
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes 创建启动时依赖的全部索引，email 唯一索引同时承担重复注册校验。
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = c.Chats().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "users", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = c.Messages().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}
