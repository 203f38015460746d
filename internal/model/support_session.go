// Package model 定义数据库实体模型
// 本文件定义客服会话注册表模型
package model

import (
	"gorm.io/gorm"
)

// SupportSession 客服会话注册表
// 对应数据库 support_session 表，一个会话至多一行（session_id 唯一，写入走 upsert）
// 没有记录的会话在所有读取处默认按 open 处理，不做回填
type SupportSession struct {
	gorm.Model

	// SessionId 会话唯一标识，与访客的一个对话线程一一对应
	SessionId string `gorm:"column:session_id;uniqueIndex;type:char(36);not null;comment:会话uuid"`

	// UserId 该会话所属访客的 UUID，消息行的 user_id 必须与之一致
	UserId string `gorm:"column:user_id;index;type:char(36);not null;comment:访客uuid"`

	// Status 会话状态
	// "open" / "pending" / "resolved"，参见 pkg/enum/session/session_status_enum
	Status string `gorm:"column:status;type:char(10);not null;default:open;comment:会话状态"`
}

// TableName 指定表名
func (SupportSession) TableName() string {
	return "support_session"
}
