package request

// SetStatusRequest 设置会话状态请求
// 使用位置:
//   - internal/handler/conversation_handler.go: SetStatus
type SetStatusRequest struct {
	SessionId string `json:"session_id" binding:"required"`
	Status    string `json:"status" binding:"required"` // "open" / "pending" / "resolved"
}
