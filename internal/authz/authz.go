// Package authz holds the per-request authorization context that every comment
// operation receives. It is computed once, after the principal and node are known.
package authz

import (
	"osf/internal/models"
	"osf/internal/utils"
)

// Auth is the resolved principal: an optional user, the view_only key from
// the query string and, for token requests, the granted scopes.
type Auth struct {
	User       *models.User
	PrivateKey string
	Scopes     map[string]bool
	ViaToken   bool
}

func (a Auth) LoggedIn() bool {
	return a.User != nil
}

func (a Auth) UserID() string {
	if a.User == nil {
		return ""
	}
	return a.User.ID
}

// HasScope is always true for session requests; tokens must carry the scope.
func (a Auth) HasScope(scope string) bool {
	if !a.ViaToken {
		return true
	}
	return a.Scopes[scope]
}

// IsAdmin mirrors the admin-scope rule: browser sessions count, tokens need
// the full admin scope set.
func (a Auth) IsAdmin() bool {
	if !a.LoggedIn() {
		return false
	}
	if !a.ViaToken {
		return true
	}
	return utils.ScopesInclude(a.Scopes, utils.AdminLevel)
}

type Context struct {
	Auth Auth
	Node *models.Node

	contributor bool
	viewOnly    bool
	anonymized  bool
	canComment  bool
}

// New computes the capabilities of auth on node. links are the node's private links.
func New(auth Auth, node *models.Node, links []models.PrivateLink) *Context {
	c := &Context{Auth: auth, Node: node}
	c.contributor = node.IsContributor(auth.UserID())
	if auth.PrivateKey != "" {
		for _, l := range links {
			if l.IsDeleted || l.NodeID != node.ID || l.Key != auth.PrivateKey {
				continue
			}
			c.viewOnly = true
			c.anonymized = c.anonymized || l.Anonymous
		}
	}
	c.canComment = node.CanComment(auth.UserID())
	return c
}

func (c *Context) IsContributor() bool {
	return c.contributor
}

func (c *Context) CanComment() bool {
	return c.canComment
}

// IsAnonymized is true when the request came through an anonymous view-only link.
func (c *Context) IsAnonymized() bool {
	return c.anonymized
}

// CanRead is the contributor-or-public policy.
func (c *Context) CanRead() bool {
	return c.Node.IsPublic || c.contributor || c.viewOnly
}

// IsAuthor reports whether the requesting user wrote comment.
func (c *Context) IsAuthor(comment *models.Comment) bool {
	return c.Auth.LoggedIn() && comment.UserID == c.Auth.UserID()
}
