// Package session_status_enum 定义客服会话状态枚举
package session_status_enum

// 会话状态
// Open 为默认状态：注册表中没有记录的会话一律视为 Open
const (
	Open     = "open"     // 新会话，等待客服首次回复
	Pending  = "pending"  // 客服已回复，等待访客
	Resolved = "resolved" // 已解决（可通过 SetStatus 重新打开）
)

// FilterAll 会话列表的特殊过滤值，等价于不过滤
const FilterAll = "all"

// IsValid 检查是否为合法的会话状态
func IsValid(status string) bool {
	switch status {
	case Open, Pending, Resolved:
		return true
	}
	return false
}

// IsValidFilter 检查是否为合法的列表过滤值（状态或 all）
func IsValidFilter(filter string) bool {
	return filter == FilterAll || IsValid(filter)
}
