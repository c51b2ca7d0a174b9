package auth

import (
	"context"
	"time"
)

// TokenStore 是 token 集合的持久化接口，由 mongo 的用户存储实现。
// Append/Remove 必须是针对单个用户文档的原子数组操作，
// 避免并发登录/登出时丢失更新。
type TokenStore interface {
	AppendToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	HasToken(ctx context.Context, userID, token string) (bool, error)
}

// TokenService 签发、校验和撤销不透明 bearer token。
// token 本身是 JWT，但只用它解出用户 id；有效性完全取决于
// 该 token 是否还在用户的活跃集合里，这样服务端可以立即撤销。
type TokenService struct {
	store  TokenStore
	secret string
	ttl    time.Duration
}

func NewTokenService(store TokenStore, secret string, ttl time.Duration) *TokenService {
	return &TokenService{store: store, secret: secret, ttl: ttl}
}

// Issue 签发新 token 并追加到用户的活跃集合。
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := SignToken(userID, s.secret, s.ttl)
	if err != nil {
		return "", err
	}
	if err := s.store.AppendToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Validate 解出用户 id 并检查 token 仍在活跃集合中。
// 签名无效、用户不存在或 token 已被撤销都返回 ok=false。
func (s *TokenService) Validate(ctx context.Context, token string) (string, bool) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return "", false
	}
	ok, err := s.store.HasToken(ctx, claims.UserID, token)
	if err != nil || !ok {
		return "", false
	}
	return claims.UserID, true
}

// Revoke 把 token 从活跃集合移除，重复撤销是无害的空操作。
func (s *TokenService) Revoke(ctx context.Context, userID, token string) error {
	return s.store.RemoveToken(ctx, userID, token)
}

// TTL 返回签发 token 的建议有效期，cookie max-age 与它保持一致。
func (s *TokenService) TTL() time.Duration { return s.ttl }
