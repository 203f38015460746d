// Package message_role_enum 定义消息发送方角色枚举
package message_role_enum

// 消息角色
const (
	Visitor = "visitor" // 访客消息
	Staff   = "staff"   // 客服消息
)
