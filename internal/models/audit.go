package models

import (
	"time"
)

// AuditEntry records an admin action taken through the console. The platform
// owns the bots themselves; this is the console's own trail of who did what.
type AuditEntry struct {
	ID        uint   `gorm:"primaryKey"`
	AdminID   int64  `gorm:"not null;index"`
	BotID     int64  `gorm:"index"`
	Action    string `gorm:"size:50;not null"`
	Detail    string `gorm:"size:512"`
	OK        bool
	CreatedAt time.Time
}
