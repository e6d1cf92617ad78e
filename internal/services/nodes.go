package services

import (
	"context"
	"fmt"
	"net/url"

	"osf/internal/models"
	"osf/internal/utils"

	"gorm.io/gorm"
)

// DefaultNodeListQuery hides deleted nodes, collections and registrations.
func DefaultNodeListQuery(tx *gorm.DB) *gorm.DB {
	return tx.Where("is_deleted = ? AND is_collection = ? AND is_registration = ?", false, false, false)
}

// DefaultNodePermissionQuery limits nodes to public ones, plus those user
// contributes to when logged in.
func DefaultNodePermissionQuery(user *models.User) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if user == nil {
			return tx.Where("is_public = ?", true)
		}
		contributed := tx.Session(&gorm.Session{NewDB: true}).
			Table("node_contributors").
			Select("node_id").
			Where("user_id = ?", user.ID)
		return tx.Where("is_public = ? OR id IN (?)", true, contributed)
	}
}

type NodeFilter struct {
	// Public filters on is_public when set.
	Public *bool
}

type NodeLinks struct {
	Self     string `json:"self"`
	Comments string `json:"comments"`
	HTML     string `json:"html"`
}

type NodeView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Public       bool      `json:"public"`
	CommentLevel string    `json:"comment_level"`
	DateCreated  string    `json:"date_created"`
	DateModified string    `json:"date_modified"`
	Links        NodeLinks `json:"links"`
}

// NodeService answers node listing requests for the API surface.
type NodeService struct {
	db     *gorm.DB
	domain string
}

func NewNodeService(conn *gorm.DB, apiDomain string) *NodeService {
	return &NodeService{db: conn, domain: apiDomain}
}

// ListVisible returns the nodes user may see. Links carry the request's
// view_only key so anonymous sharing survives navigation.
func (s *NodeService) ListVisible(ctx context.Context, user *models.User, filter NodeFilter, query url.Values) ([]NodeView, error) {
	tx := s.db.WithContext(ctx).Model(&models.Node{}).
		Scopes(DefaultNodeListQuery, DefaultNodePermissionQuery(user))
	if filter.Public != nil {
		tx = tx.Where("is_public = ?", *filter.Public)
	}
	var nodes []models.Node
	if err := tx.Order("date_modified DESC").Order("id ASC").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeView{
			ID:           n.ID,
			Title:        n.Title,
			Public:       n.IsPublic,
			CommentLevel: n.CommentLevel,
			DateCreated:  utils.IsoFormat(n.DateCreated),
			DateModified: utils.IsoFormat(n.DateModified),
			Links:        s.links(n.ID, query),
		})
	}
	return out, nil
}

func (s *NodeService) links(nodeID string, query url.Values) NodeLinks {
	self := utils.AbsoluteReverse(s.domain, "v2/nodes/"+nodeID, nil)
	comments := utils.AbsoluteReverse(s.domain, "v2/nodes/"+nodeID+"/comments", nil)
	html := "/project/" + nodeID + "/discussions"
	return NodeLinks{
		Self:     utils.ExtendQuerystringIfKeyExists(self, query, "view_only"),
		Comments: utils.ExtendQuerystringIfKeyExists(comments, query, "view_only"),
		HTML:     utils.ExtendQuerystringIfKeyExists(html, query, "view_only"),
	}
}

// ParsePublicFilter reads filter[public]; anything neither truthy nor falsy
// leaves the filter unset.
func ParsePublicFilter(raw string) NodeFilter {
	switch {
	case utils.IsTruthy(raw):
		v := true
		return NodeFilter{Public: &v}
	case utils.IsFalsy(raw):
		v := false
		return NodeFilter{Public: &v}
	}
	return NodeFilter{}
}
