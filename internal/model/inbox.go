package model

import "time"

// Inbox 收集箱条目；ID 为 0 表示尚未持久化
type Inbox struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Item string `json:"item" gorm:"type:text"`
	// CreateTime 仅在创建时由服务端写入
	CreateTime *time.Time `json:"createTime" gorm:"column:create_time"`
	// ModifyTime 首次更新前为 nil
	ModifyTime *time.Time `json:"modifyTime" gorm:"column:modify_time"`
}

func (Inbox) TableName() string { return "inbox" }
