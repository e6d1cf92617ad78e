package services

import (
	"context"
	"fmt"

	"osf/internal/apperr"
	"osf/internal/models"
)

// Target is what a comment hangs off: the node, a wiki page or another comment.
// The zero Target means a wiki page name that did not resolve.
type Target struct {
	Kind    string
	Node    *models.Node
	Wiki    *models.WikiPage
	Comment *models.Comment
}

func (t Target) Missing() bool {
	return t.Kind == ""
}

// key is the value stored in Comment.TargetID. Wiki targets are keyed by page
// name so comments survive new page versions.
func (t Target) key() string {
	switch t.Kind {
	case models.TargetNode:
		return t.Node.ID
	case models.TargetWiki:
		return t.Wiki.PageName
	case models.TargetComment:
		return t.Comment.ID
	}
	return ""
}

// rootID is the top-level comment of the thread a reply to t would join.
func (t Target) rootID() string {
	if t.Kind != models.TargetComment {
		return ""
	}
	if t.Comment.RootID != "" {
		return t.Comment.RootID
	}
	return t.Comment.ID
}

// ResolveTarget maps the target guid of a request onto an entity of node.
// An empty guid is the node itself. Unknown guids are a bad request, except
// on wiki pages where the guid is retried as a page name (version 1).
func (s *CommentService) ResolveTarget(ctx context.Context, node *models.Node, page, guid string) (Target, error) {
	if guid == "" || guid == node.ID {
		return Target{Kind: models.TargetNode, Node: node}, nil
	}
	conn := s.db.WithContext(ctx)

	var c models.Comment
	if err := conn.Where("id = ? AND node_id = ?", guid, node.ID).Limit(1).Find(&c).Error; err != nil {
		return Target{}, fmt.Errorf("resolve comment target: %w", err)
	}
	if c.ID != "" {
		return Target{Kind: models.TargetComment, Node: node, Comment: &c}, nil
	}

	var w models.WikiPage
	if err := conn.Where("id = ? AND node_id = ?", guid, node.ID).Limit(1).Find(&w).Error; err != nil {
		return Target{}, fmt.Errorf("resolve wiki target: %w", err)
	}
	if w.ID != "" {
		return Target{Kind: models.TargetWiki, Node: node, Wiki: &w}, nil
	}

	if page != PageWiki {
		return Target{}, apperr.BadRequest("Comment target not found.")
	}
	// 按页面名称查找第一版
	if err := conn.Where("node_id = ? AND page_name = ? AND version = ?", node.ID, guid, 1).Limit(1).Find(&w).Error; err != nil {
		return Target{}, fmt.Errorf("resolve wiki page %q: %w", guid, err)
	}
	if w.ID == "" {
		return Target{}, nil
	}
	return Target{Kind: models.TargetWiki, Node: node, Wiki: &w}, nil
}
