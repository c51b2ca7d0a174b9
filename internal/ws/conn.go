package ws

import (
	"net/http"
	"time"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client 是一条活的 websocket 连接与用户身份的绑定，
// 生命周期与底层连接一致，断开即释放全部房间成员资格。
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
	rooms  map[string]struct{}
	closed bool
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve 处理 websocket 升级。升级前必须通过 token 校验，
// 连接的身份来自 token 而不是客户端之后在 setup 里声明的 id。
func Serve(reg *Registry, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = auth.BearerToken(c)
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		userID, ok := tokens.Validate(c.Request.Context(), token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{
			conn:   conn,
			send:   make(chan []byte, 256),
			userID: userID,
			rooms:  make(map[string]struct{}),
		}
		metrics.WsConnections.Inc()

		go client.writePump()
		client.readPump(reg)
	}
}

// OnlineCount 返回指定房间当前的在线连接数，REST 侧借此复用注册表状态。
func OnlineCount(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": reg.Online(c.Param("chatId"))})
	}
}

// readPump 顺序处理来自同一连接的事件，保证单连接内的到达顺序。
func (c *Client) readPump(reg *Registry) {
	defer func() {
		reg.Drop(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		Dispatch(reg, c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(frame)
			_ = w.Close()
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
