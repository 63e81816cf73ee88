package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records a customization change made by a player or the admin API.
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_wp_audit_trace;size:36;not null" json:"trace_id"`
	SteamID   string         `gorm:"column:steamid;index:idx_wp_audit_steamid;size:64" json:"steamid"`
	Slot      int            `json:"slot"`
	Action    string         `gorm:"size:64;not null" json:"action"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"index:idx_wp_audit_created;autoCreateTime:milli" json:"created_at"`
}

func (AuditLog) TableName() string { return "wp_audit_log" }
