package models

import (
	"time"
)

// CommentState is the lifecycle variant of a comment. Comments are never removed.
type CommentState string

const (
	CommentActive  CommentState = "active"
	CommentDeleted CommentState = "deleted"
)

// Kinds of entity a comment can be attached to.
const (
	TargetNode    = "node"
	TargetWiki    = "wiki"
	TargetComment = "comment"
)

type Comment struct {
	ID           string       `gorm:"primaryKey;size:16" json:"id"`
	NodeID       string       `gorm:"size:16;not null;index" json:"node_id"` // root node, immutable
	UserID       string       `gorm:"size:16;not null;index" json:"user_id"`
	User         User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TargetKind   string       `gorm:"size:10;not null;index:idx_comment_target" json:"target_kind"`
	TargetID     string       `gorm:"size:16;not null;index:idx_comment_target" json:"target_id"`
	RootID       string       `gorm:"size:16" json:"root_id"` // top-level comment of the thread, empty for top-level
	Page         string       `gorm:"size:10" json:"page"`
	Content      string       `gorm:"type:text;not null" json:"content"`
	State        CommentState `gorm:"size:10;not null;default:'active'" json:"state"`
	IsHidden     bool         `gorm:"default:false" json:"is_hidden"`
	Modified     bool         `gorm:"default:false" json:"modified"`
	DateCreated  time.Time    `gorm:"column:date_created;index" json:"date_created"`
	DateModified time.Time    `gorm:"column:date_modified" json:"date_modified"`
}

func (c *Comment) IsDeleted() bool {
	return c.State == CommentDeleted
}
