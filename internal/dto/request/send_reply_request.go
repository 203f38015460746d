package request

// SendReplyRequest 客服回复请求
// 使用位置:
//   - internal/handler/conversation_handler.go: SendReply
type SendReplyRequest struct {
	SessionId string `json:"session_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}
