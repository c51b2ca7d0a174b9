package main

import (
	"context"
	"time"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/config"
	"github.com/Yashraval366/Chat-App/internal/db"
	clog "github.com/Yashraval366/Chat-App/internal/log"
	"github.com/Yashraval366/Chat-App/internal/server"
	"github.com/Yashraval366/Chat-App/internal/service"
	"github.com/Yashraval366/Chat-App/internal/store"
	"github.com/Yashraval366/Chat-App/internal/ws"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// main 负责加载配置、初始化日志、连接数据库并启动 Gin 服务。
	_ = godotenv.Load()
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer func() { _ = client.Close(ctx) }()
	if err := client.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ensure indexes")
	}

	users := store.NewUsersStore(client.Users())
	chats := store.NewChatsStore(client.Chats())
	msgs := store.NewMessagesStore(client.Messages())

	tokens := auth.NewTokenService(users, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)

	userSvc := service.NewUserService(users, tokens, verifier)
	chatSvc := service.NewChatService(chats, users)
	msgSvc := service.NewMessageService(msgs, chats)

	reg := ws.NewRegistry()
	h := server.NewHandler(userSvc, chatSvc, msgSvc, tokens, cfg.Env)
	r := server.SetupRouter(cfg, h, tokens, reg)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
