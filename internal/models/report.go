package models

import (
	"time"
)

const (
	ReportActionReport  = "report"
	ReportActionRetract = "retract"
)

// ReportEntry is one line of a comment's append-only abuse log. A reporter's
// report is in force while their latest entry is a "report".
type ReportEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommentID   string    `gorm:"size:16;not null;index:idx_report_comment_reporter" json:"comment_id"`
	ReporterID  string    `gorm:"size:16;not null;index:idx_report_comment_reporter" json:"reporter_id"`
	Action      string    `gorm:"size:10;not null" json:"action"`
	Category    string    `gorm:"size:50" json:"category"`
	Text        string    `gorm:"size:500" json:"text"`
	DateCreated time.Time `gorm:"column:date_created" json:"date_created"`
}
