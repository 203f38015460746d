package request

// OpenSessionRequest 打开会话请求
// 客服端点击某个会话时拉取完整消息记录并清零未读数
// 使用位置:
//   - internal/handler/conversation_handler.go: OpenSession
type OpenSessionRequest struct {
	SessionId string `json:"session_id" binding:"required"`
}
