package request

// DeleteConversationRequest 删除会话请求
// 同时删除会话的全部消息和注册表记录
// 使用位置:
//   - internal/handler/conversation_handler.go: DeleteConversation
type DeleteConversationRequest struct {
	SessionId string `json:"session_id" binding:"required"`
}
