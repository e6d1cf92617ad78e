package services

import (
	"html/template"

	"osf/internal/models"
	"osf/internal/utils"
)

// PrivateName replaces author names behind an anonymous view-only link.
const PrivateName = "A user"

func privacyInfo(value string, anonymous bool) string {
	if anonymous {
		return ""
	}
	return value
}

func privacyName(name string, anonymous bool) string {
	if anonymous {
		return PrivateName
	}
	return name
}

type AuthorView struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	GravatarURL string `json:"gravatarUrl"`
}

type CommentView struct {
	ID           string        `json:"id"`
	Author       AuthorView    `json:"author"`
	DateCreated  string        `json:"dateCreated"`
	DateModified string        `json:"dateModified"`
	Page         string        `json:"page"`
	TargetID     string        `json:"targetId"`
	RootID       string        `json:"rootId"`
	Content      string        `json:"content"`
	ContentHTML  template.HTML `json:"contentHtml"`
	HasChildren  bool          `json:"hasChildren"`
	CanEdit      bool          `json:"canEdit"`
	Modified     bool          `json:"modified"`
	IsDeleted    bool          `json:"isDeleted"`
	IsHidden     bool          `json:"isHidden"`
	IsAbuse      bool          `json:"isAbuse"`
}

func (s *CommentService) serialize(c *models.Comment, viewerID string, anonymous, hasChildren, isAbuse bool) CommentView {
	rootID := c.RootID
	if rootID == "" {
		rootID = c.NodeID
	}
	return CommentView{
		ID: c.ID,
		Author: AuthorView{
			ID:          privacyInfo(c.User.ID, anonymous),
			URL:         privacyInfo(c.User.URL(), anonymous),
			Name:        privacyName(c.User.Fullname, anonymous),
			GravatarURL: privacyInfo(s.avatars.URL(c.User.Username, s.gravatarSize, true), anonymous),
		},
		DateCreated:  utils.IsoFormat(c.DateCreated),
		DateModified: utils.IsoFormat(c.DateModified),
		Page:         c.Page,
		TargetID:     c.TargetID,
		RootID:       rootID,
		Content:      c.Content,
		ContentHTML:  utils.RenderMarkdown(c.Content),
		HasChildren:  hasChildren,
		CanEdit:      viewerID != "" && c.UserID == viewerID,
		Modified:     c.Modified,
		IsDeleted:    c.IsDeleted(),
		IsHidden:     c.IsHidden,
		IsAbuse:      isAbuse,
	}
}

func (s *CommentService) serializeDiscussion(node *models.Node, u *models.User, anonymous bool) DiscussionEntry {
	return DiscussionEntry{
		ID:            privacyInfo(u.ID, anonymous),
		URL:           privacyInfo(u.URL(), anonymous),
		Fullname:      privacyName(u.Fullname, anonymous),
		IsContributor: node.IsContributor(u.ID),
		GravatarURL:   privacyInfo(s.avatars.URL(u.Username, s.gravatarSize, true), anonymous),
	}
}
