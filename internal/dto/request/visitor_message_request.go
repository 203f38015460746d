package request

// VisitorMessageRequest 访客发送消息请求
// 访客身份从 JWT 中间件注入的上下文获取，不由请求体提供
// 使用位置:
//   - internal/handler/message_handler.go: SendVisitorMessage
type VisitorMessageRequest struct {
	SessionId string `json:"session_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}
