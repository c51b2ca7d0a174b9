package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/models"
	"github.com/Yashraval366/Chat-App/internal/store"
)

// UserStore 是用户存储的最小接口，mongo 实现见 internal/store，
// 测试里用内存假实现替换。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, name, bio *string) (*models.User, error)
	Search(ctx context.Context, query, excludeID string) ([]models.User, error)
}

// IDTokenVerifier 把身份提供方当黑盒：输入凭证，输出已验签的载荷。
type IDTokenVerifier interface {
	Verify(ctx context.Context, tokenID string) (*auth.GoogleClaims, error)
}

// UserService 封装注册、登录、联合登录和资料相关的业务逻辑。
type UserService struct {
	store    UserStore
	tokens   *auth.TokenService
	verifier IDTokenVerifier
}

func NewUserService(store UserStore, tokens *auth.TokenService, verifier IDTokenVerifier) *UserService {
	return &UserService{store: store, tokens: tokens, verifier: verifier}
}

// Register 创建新用户并签发首个 token，邮箱冲突返回 store.ErrEmailTaken。
func (s *UserService) Register(ctx context.Context, firstname, lastname, email, password string) (string, error) {
	name := strings.TrimSpace(firstname + " " + lastname)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	user, err := s.store.Create(ctx, &models.User{Name: name, Email: email, Password: hash})
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, user.ID.Hex())
}

// Login 校验邮箱密码并签发新 token。未知邮箱和密码错误是
// 两种不同的错误，handler 分别映射到 404 和 401。
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if !auth.VerifyPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(ctx, user.ID.Hex())
}

// Logout 撤销当前 token，其余设备的 token 不受影响。
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.tokens.Revoke(ctx, userID, token)
}

// Current 返回当前登录用户。
func (s *UserService) Current(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GoogleAuthResult 是一次联合登录的结果，Created 表示本次新建了用户。
type GoogleAuthResult struct {
	Token   string
	User    *models.User
	Created bool
}

// GoogleAuth 完成联合登录：验签、按邮箱找或建用户、签发服务端 token。
// 同一个已验证邮箱重复交换永远落到同一条用户记录上。
func (s *UserService) GoogleAuth(ctx context.Context, tokenID string) (*GoogleAuthResult, error) {
	claims, err := s.verifier.Verify(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuth, err)
	}
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	user, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	created := false
	if user == nil {
		// 联合登录创建的账号用随机口令占住密码字段，永远无法直接登录
		secret, err := auth.RandomSecret()
		if err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(secret)
		if err != nil {
			return nil, err
		}
		user, err = s.store.Create(ctx, &models.User{
			Name:       claims.Name,
			Email:      claims.Email,
			Password:   hash,
			ProfilePic: claims.Picture,
		})
		if errors.Is(err, store.ErrEmailTaken) {
			// 并发的两次交换撞上了唯一索引，回读即可保持幂等
			user, err = s.store.FindByEmail(ctx, claims.Email)
			if err == nil && user == nil {
				err = ErrUserNotFound
			}
		} else {
			created = true
		}
		if err != nil {
			return nil, err
		}
	}
	token, err := s.tokens.Issue(ctx, user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &GoogleAuthResult{Token: token, User: user, Created: created}, nil
}

// Search 按姓名或邮箱子串搜索用户，结果不包含请求者自己。
func (s *UserService) Search(ctx context.Context, query, excludeID string) ([]models.User, error) {
	return s.store.Search(ctx, query, excludeID)
}

// Get 按 id 返回用户。
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateInfo 修改姓名或简介，nil 表示对应字段不变。
func (s *UserService) UpdateInfo(ctx context.Context, id string, name, bio *string) (*models.User, error) {
	user, err := s.store.Update(ctx, id, name, bio)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
