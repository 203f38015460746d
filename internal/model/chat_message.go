// Package model 定义数据库实体模型
// 本文件定义客服消息模型
package model

import (
	"gorm.io/gorm"
)

// ChatMessage 客服消息模型
// 对应数据库 chat_message 表
// 消息一经写入不可修改，唯一的例外是 IsRead 只允许 false -> true
type ChatMessage struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID，服务端生成，天然幂等
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// SessionId 会话 UUID
	// 同一会话的所有消息共享一个 session_id
	SessionId string `gorm:"column:session_id;index;type:char(36);not null;comment:会话uuid"`

	// UserId 访客 UUID
	// 访客消息和客服回复都记录该会话所属访客的 ID
	UserId string `gorm:"column:user_id;index;type:char(36);not null;comment:访客uuid"`

	// Role 发送方角色
	// "visitor" 或 "staff"，参见 pkg/enum/message/message_role_enum
	Role string `gorm:"column:role;type:char(10);not null;comment:发送方角色"`

	// Content 消息文本内容，非空
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// IsRead 已读标记
	// 访客消息默认未读，客服自己发出的消息直接记为已读
	// 只允许 false -> true，markSessionRead 批量置位
	IsRead bool `gorm:"column:is_read;not null;default:false;comment:是否已读"`

	// IsSupport 客服通道标记
	// 区分本引擎的消息与共用同一张表的其他聊天流量（如商品助手机器人）
	// 本引擎写入的行恒为 true
	IsSupport bool `gorm:"column:is_support;index;not null;default:true;comment:是否客服通道消息"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_message"
}
