package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/models"
	"github.com/Yashraval366/Chat-App/internal/service"
	"github.com/Yashraval366/Chat-App/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	userSvc *service.UserService
	chatSvc *service.ChatService
	msgSvc  *service.MessageService
	tokens  *auth.TokenService
	env     string
}

func NewHandler(userSvc *service.UserService, chatSvc *service.ChatService, msgSvc *service.MessageService, tokens *auth.TokenService, env string) *Handler {
	return &Handler{userSvc: userSvc, chatSvc: chatSvc, msgSvc: msgSvc, tokens: tokens, env: env}
}

// secureCookie dev 环境走明文 http，其余环境 cookie 只经 https 传输。
func (h *Handler) secureCookie() bool {
	return h.env != "dev"
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(auth.CookieName, token, int(h.tokens.TTL().Seconds()), "/", "", h.secureCookie(), true)
}

// respondErr 把业务错误映射为 HTTP 状态码，未识别的错误记日志后回 500。
func respondErr(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
	default:
		log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// Register 处理用户注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Email = strings.TrimSpace(req.Email)
	if req.Firstname == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(req.Password) < 4 || len(req.Password) > 72 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
		return
	}
	token, err := h.userSvc.Register(c.Request.Context(), req.Firstname, req.Lastname, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Success", "token": token})
}

// Login 处理登录请求，成功时同时下发 httpOnly 会话 cookie。
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	token, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User does not exist"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Credentials"})
		default:
			log.Error().Err(err).Str("email", req.Email).Msg("login")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"token": token, "status": http.StatusOK})
}

// ValidUser 返回当前会话对应的用户和 token，用于前端恢复会话。
func (h *Handler) ValidUser(c *gin.Context) {
	user, err := h.userSvc.Current(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err, "valid user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": auth.GetToken(c)})
}

// GoogleAuth 处理联合登录凭证交换，新建用户返回 201。
func (h *Handler) GoogleAuth(c *gin.Context) {
	var req struct {
		TokenID string `json:"tokenId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TokenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.userSvc.GoogleAuth(c.Request.Context(), req.TokenID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email Not Verified"})
		case errors.Is(err, service.ErrGoogleAuth):
			log.Warn().Err(err).Msg("google auth verify")
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Credentials"})
		default:
			log.Error().Err(err).Msg("google auth")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	h.setSessionCookie(c, result.Token)
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"token": result.Token, "user": result.User})
}

// Logout 撤销当前 token 并清除会话 cookie。
func (h *Handler) Logout(c *gin.Context) {
	err := h.userSvc.Logout(c.Request.Context(), auth.GetUserID(c), auth.GetToken(c))
	if err != nil {
		respondErr(c, err, "logout")
		return
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// SearchUsers 按姓名或邮箱搜索用户，结果不包含调用者自己。
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.userSvc.Search(c.Request.Context(), c.Query("search"), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err, "search users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser 按 id 返回用户公开资料。
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser 修改姓名或简介，缺省字段保持不变。
func (h *Handler) UpdateUser(c *gin.Context) {
	var req struct {
		Name *string `json:"name"`
		Bio  *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	user, err := h.userSvc.UpdateInfo(c.Request.Context(), c.Param("id"), req.Name, req.Bio)
	if err != nil {
		respondErr(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User info updated successfully", "user": user})
}

// AccessChat 获取或创建与另一个用户的单聊，重复调用返回同一个聊天。
func (h *Handler) AccessChat(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	chat, err := h.chatSvc.Access(c.Request.Context(), auth.GetUserID(c), req.UserID)
	if err != nil {
		respondErr(c, err, "access chat")
		return
	}
	c.JSON(http.StatusOK, chat)
}

// ListChats 返回调用者参与的全部聊天。
func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.chatSvc.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err, "list chats")
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CreateGroup 创建群聊，至少需要两名除创建者以外的成员。
func (h *Handler) CreateGroup(c *gin.Context) {
	var req struct {
		ChatName string   `json:"chatName"`
		Users    []string `json:"users"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.ChatName = strings.TrimSpace(req.ChatName)
	if req.ChatName == "" || len(req.Users) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group needs a name and at least 2 users"})
		return
	}
	chat, err := h.chatSvc.CreateGroup(c.Request.Context(), auth.GetUserID(c), req.ChatName, req.Users)
	if err != nil {
		respondErr(c, err, "create group")
		return
	}
	c.JSON(http.StatusOK, chat)
}

// RenameGroup 修改群名。
func (h *Handler) RenameGroup(c *gin.Context) {
	var req struct {
		ChatID   string `json:"chatId"`
		ChatName string `json:"chatName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" || strings.TrimSpace(req.ChatName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	chat, err := h.chatSvc.Rename(c.Request.Context(), req.ChatID, strings.TrimSpace(req.ChatName))
	if err != nil {
		respondErr(c, err, "rename group")
		return
	}
	c.JSON(http.StatusOK, chat)
}

// AddToGroup 把用户拉进群聊。
func (h *Handler) AddToGroup(c *gin.Context) {
	h.mutateGroupMember(c, h.chatSvc.AddMember, "group add")
}

// RemoveFromGroup 把用户移出群聊。
func (h *Handler) RemoveFromGroup(c *gin.Context) {
	h.mutateGroupMember(c, h.chatSvc.RemoveMember, "group remove")
}

func (h *Handler) mutateGroupMember(c *gin.Context, op func(ctx context.Context, chatID, userID string) (*models.Chat, error), msg string) {
	var req struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	chat, err := op(c.Request.Context(), req.ChatID, req.UserID)
	if err != nil {
		respondErr(c, err, msg)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// SendMessage 先落库再响应，实时转发由客户端拿着响应走 websocket。
func (h *Handler) SendMessage(c *gin.Context) {
	var req struct {
		ChatID  string `json:"chatId"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}
	msg, err := h.msgSvc.Send(c.Request.Context(), auth.GetUserID(c), req.ChatID, req.Message)
	if err != nil {
		respondErr(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ChatHistory 返回聊天的全部历史消息，按时间升序。
func (h *Handler) ChatHistory(c *gin.Context) {
	msgs, err := h.msgSvc.History(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		respondErr(c, err, "chat history")
		return
	}
	c.JSON(http.StatusOK, msgs)
}
