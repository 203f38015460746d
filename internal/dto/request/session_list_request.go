package request

// SessionListRequest 客服会话列表请求
// 使用位置:
//   - internal/handler/conversation_handler.go: ListSessions
type SessionListRequest struct {
	Status string `form:"status"` // 状态过滤："open" / "pending" / "resolved" / "all"，留空等同 "all"
}
