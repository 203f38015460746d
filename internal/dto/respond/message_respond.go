package respond

// MessageRespond 消息响应
// 使用位置:
//   - internal/service/conversation/service.go: OpenSession / SendReply / SendVisitorMessage
//   - internal/service/fanout/broker.go: Event (实时推送负载)
type MessageRespond struct {
	Id        string `json:"id"` // 雪花 ID，字符串避免前端 JS 精度丢失
	SessionId string `json:"session_id"`
	UserId    string `json:"user_id"`
	Role      string `json:"role"` // "visitor" / "staff"
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"` // 格式 "2006-01-02 15:04:05"
}
