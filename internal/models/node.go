package models

import (
	"time"
)

// Comment levels stored on Node.CommentLevel. An empty level disables commenting.
const (
	CommentLevelPublic  = "public"
	CommentLevelPrivate = "private"
)

// Node is a project-like container owning comments, wiki pages and view-only links.
type Node struct {
	ID             string    `gorm:"primaryKey;size:16" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	CreatorID      string    `gorm:"size:16;index" json:"creator_id"`
	IsPublic       bool      `gorm:"default:false;index" json:"is_public"`
	IsDeleted      bool      `gorm:"default:false" json:"is_deleted"`
	IsCollection   bool      `gorm:"default:false" json:"is_collection"`
	IsRegistration bool      `gorm:"default:false" json:"is_registration"`
	CommentLevel   string    `gorm:"size:10" json:"comment_level"`
	Contributors   []User    `gorm:"many2many:node_contributors;" json:"contributors"`
	DateCreated    time.Time `gorm:"column:date_created" json:"date_created"`
	DateModified   time.Time `gorm:"column:date_modified" json:"date_modified"`
}

// IsContributor reports whether userID is among the preloaded contributors.
func (n *Node) IsContributor(userID string) bool {
	if userID == "" {
		return false
	}
	for _, u := range n.Contributors {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// CanComment: public-level nodes accept comments from any logged-in reader,
// otherwise only contributors may comment.
func (n *Node) CanComment(userID string) bool {
	if n.CommentLevel == CommentLevelPublic {
		return userID != "" && (n.IsPublic || n.IsContributor(userID))
	}
	return n.IsContributor(userID)
}

// CommentsEnabled is false when the node has no comment level at all.
func (n *Node) CommentsEnabled() bool {
	return n.CommentLevel != ""
}
