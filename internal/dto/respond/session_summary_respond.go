package respond

// SessionSummaryRespond 会话摘要响应
// 客服工作台列表的单行数据，由消息记录和注册表聚合而成
// 使用位置:
//   - internal/service/conversation/aggregator.go: buildSummaries
//   - internal/service/conversation/service.go: ListSessions / SetStatus / Refresh
type SessionSummaryRespond struct {
	SessionId       string `json:"session_id"`
	UserId          string `json:"user_id"`
	UserEmail       string `json:"user_email"`
	LastMessage     string `json:"last_message"`
	LastMessageTime string `json:"last_message_time"`
	UnreadCount     int64  `json:"unread_count"`
	Status          string `json:"status"`
}
