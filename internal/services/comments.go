package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"osf/internal/apperr"
	"osf/internal/authz"
	"osf/internal/metrics"
	"osf/internal/models"
	"osf/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Page types accepted by the comment endpoints.
const (
	PageNode  = "node"
	PageWiki  = "wiki"
	PageTotal = "total"
)

const (
	DefaultMaxLength    = 500
	DefaultGravatarSize = 20
	guidLength          = 5
)

// CommentService implements the comment lifecycle, the discussion
// aggregator and the unread estimator on top of gorm.
type CommentService struct {
	db           *gorm.DB
	log          *logrus.Logger
	avatars      *utils.AvatarBuilder
	metrics      *metrics.Metrics
	maxLength    int
	gravatarSize int
	now          func() time.Time
}

type Options struct {
	MaxLength    int
	GravatarSize int
	Avatars      *utils.AvatarBuilder
	Metrics      *metrics.Metrics
	Clock        func() time.Time
}

func NewCommentService(conn *gorm.DB, log *logrus.Logger, opts Options) (*CommentService, error) {
	s := &CommentService{
		db:           conn,
		log:          log,
		avatars:      opts.Avatars,
		metrics:      opts.Metrics,
		maxLength:    opts.MaxLength,
		gravatarSize: opts.GravatarSize,
		now:          opts.Clock,
	}
	if s.maxLength <= 0 {
		s.maxLength = DefaultMaxLength
	}
	if s.gravatarSize <= 0 {
		s.gravatarSize = DefaultGravatarSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.avatars == nil {
		b, err := utils.NewAvatarBuilder(256)
		if err != nil {
			return nil, err
		}
		s.avatars = b
	}
	return s, nil
}

func (s *CommentService) clock() time.Time {
	return s.now().UTC()
}

type CreateInput struct {
	Page    string `json:"page"`
	Target  string `json:"target"`
	Content string `json:"content"`
}

// Create adds a comment below the resolved target and returns it serialized.
func (s *CommentService) Create(ctx context.Context, ac *authz.Context, in CreateInput) (*CommentView, error) {
	view, err := s.create(ctx, ac, in)
	s.record("create", err)
	return view, err
}

func (s *CommentService) create(ctx context.Context, ac *authz.Context, in CreateInput) (*CommentView, error) {
	node := ac.Node
	if !node.CommentsEnabled() {
		return nil, apperr.BadRequest("Comments are disabled on this node.")
	}
	if !ac.CanComment() {
		return nil, apperr.Forbidden("You may not comment on this node.")
	}
	target, err := s.ResolveTarget(ctx, node, in.Page, in.Target)
	if err != nil {
		return nil, err
	}
	if target.Missing() {
		return nil, apperr.BadRequest("Comment target not found.")
	}
	content, err := s.cleanContent(in.Content)
	if err != nil {
		return nil, err
	}

	page := in.Page
	if page == "" {
		page = PageNode
	}
	now := s.clock()
	c := &models.Comment{
		NodeID:       node.ID,
		UserID:       ac.Auth.UserID(),
		User:         *ac.Auth.User,
		TargetKind:   target.Kind,
		TargetID:     target.key(),
		RootID:       target.rootID(),
		Page:         page,
		Content:      content,
		State:        models.CommentActive,
		DateCreated:  now,
		DateModified: now,
	}
	if err := s.insertComment(ctx, c); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"op":         "create",
		"comment_id": c.ID,
		"node_id":    node.ID,
		"user_id":    c.UserID,
	}).Info("comment created")

	view := s.serialize(c, ac.Auth.UserID(), ac.IsAnonymized(), false, false)
	return &view, nil
}

// insertComment assigns a fresh guid, retrying on the rare collision.
func (s *CommentService) insertComment(ctx context.Context, c *models.Comment) error {
	for attempt := 0; attempt < 5; attempt++ {
		c.ID = utils.NewGUID(guidLength)
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check comment id: %w", err)
		}
		if n > 0 {
			continue
		}
		if err := s.db.WithContext(ctx).Omit("User").Create(c).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	}
	return errors.New("could not allocate a comment id")
}

// cleanContent trims and sanitizes raw, then enforces the length limits.
func (s *CommentService) cleanContent(raw string) (string, error) {
	content := utils.CleanContent(raw)
	if content == "" {
		return "", apperr.BadRequest("Comment content is empty.")
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return "", apperr.BadRequest(fmt.Sprintf("Comment exceeds %d characters.", s.maxLength))
	}
	return content, nil
}

// loadComment finds cid on node. Unknown ids are a bad request, not a 404.
func (s *CommentService) loadComment(ctx context.Context, node *models.Node, cid string) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Preload("User").Where("id = ?", cid).Limit(1).Find(&c).Error
	if err != nil {
		return nil, fmt.Errorf("load comment %s: %w", cid, err)
	}
	if c.ID == "" || c.NodeID != node.ID {
		return nil, apperr.BadRequest("Comment not found.")
	}
	return &c, nil
}

func (s *CommentService) ownComment(ctx context.Context, ac *authz.Context, cid string) (*models.Comment, error) {
	c, err := s.loadComment(ctx, ac.Node, cid)
	if err != nil {
		return nil, err
	}
	if !ac.IsAuthor(c) {
		return nil, apperr.Forbidden("Only the author may change this comment.")
	}
	return c, nil
}

// Edit replaces the content of the caller's own comment and marks it modified.
func (s *CommentService) Edit(ctx context.Context, ac *authz.Context, cid, rawContent string) (*CommentView, error) {
	view, err := s.edit(ctx, ac, cid, rawContent)
	s.record("edit", err)
	return view, err
}

func (s *CommentService) edit(ctx context.Context, ac *authz.Context, cid, rawContent string) (*CommentView, error) {
	c, err := s.ownComment(ctx, ac, cid)
	if err != nil {
		return nil, err
	}
	content, err := s.cleanContent(rawContent)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", c.ID).Updates(map[string]any{
		"content":       content,
		"modified":      true,
		"date_modified": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update comment %s: %w", c.ID, err)
	}
	c.Content = content
	c.Modified = true
	c.DateModified = now

	s.log.WithFields(logrus.Fields{
		"op":         "edit",
		"comment_id": c.ID,
		"node_id":    c.NodeID,
		"user_id":    c.UserID,
	}).Info("comment edited")

	flags, err := s.childFlags(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	reported, err := s.reportedBy(ctx, ac.Auth.UserID(), []string{c.ID})
	if err != nil {
		return nil, err
	}
	view := s.serialize(c, ac.Auth.UserID(), ac.IsAnonymized(), flags[c.ID], reported[c.ID])
	return &view, nil
}

// Delete soft-deletes the caller's own comment. Replies are left in place.
func (s *CommentService) Delete(ctx context.Context, ac *authz.Context, cid string) error {
	err := s.setState(ctx, ac, cid, models.CommentDeleted)
	s.record("delete", err)
	return err
}

// Undelete restores a soft-deleted comment of the caller.
func (s *CommentService) Undelete(ctx context.Context, ac *authz.Context, cid string) error {
	err := s.setState(ctx, ac, cid, models.CommentActive)
	s.record("undelete", err)
	return err
}

func (s *CommentService) setState(ctx context.Context, ac *authz.Context, cid string, state models.CommentState) error {
	c, err := s.ownComment(ctx, ac, cid)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", c.ID).Update("state", state).Error; err != nil {
		return fmt.Errorf("set comment %s state: %w", c.ID, err)
	}
	s.log.WithFields(logrus.Fields{
		"op":         string(state),
		"comment_id": c.ID,
		"node_id":    c.NodeID,
		"user_id":    c.UserID,
	}).Info("comment state changed")
	return nil
}

type CommentList struct {
	Comments []CommentView `json:"comments"`
	NUnread  int64         `json:"nUnread"`
}

// List returns the comments directly below the target, or every comment of
// the node for page "total". Deleted comments are included and flagged.
func (s *CommentService) List(ctx context.Context, ac *authz.Context, page, guid string) (*CommentList, error) {
	idx, err := s.loadIndex(ctx, ac.Node.ID)
	if err != nil {
		return nil, err
	}

	var comments []*models.Comment
	if page == PageTotal {
		comments = idx.all
	} else {
		target, err := s.ResolveTarget(ctx, ac.Node, page, guid)
		if err != nil {
			return nil, err
		}
		if !target.Missing() {
			comments = idx.childrenOf(target.Kind, target.key())
		}
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	viewer := ac.Auth.UserID()
	reported, err := s.reportedBy(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := &CommentList{Comments: make([]CommentView, 0, len(comments))}
	anonymous := ac.IsAnonymized()
	for _, c := range comments {
		out.Comments = append(out.Comments, s.serialize(c, viewer, anonymous, idx.hasChildren(c), reported[c.ID]))
	}

	if ac.IsContributor() {
		n, err := s.UnreadCount(ctx, ac.Node.ID, viewer)
		if err != nil {
			return nil, err
		}
		out.NUnread = n
	}
	return out, nil
}

// Get serializes a single comment of the node for the comments page.
func (s *CommentService) Get(ctx context.Context, ac *authz.Context, cid string) (*CommentView, error) {
	c, err := s.loadComment(ctx, ac.Node, cid)
	if err != nil {
		return nil, err
	}
	flags, err := s.childFlags(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	reported, err := s.reportedBy(ctx, ac.Auth.UserID(), []string{c.ID})
	if err != nil {
		return nil, err
	}
	view := s.serialize(c, ac.Auth.UserID(), ac.IsAnonymized(), flags[c.ID], reported[c.ID])
	return &view, nil
}

// childFlags reports which of ids have at least one reply.
func (s *CommentService) childFlags(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var parents []string
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Distinct("target_id").
		Where("target_kind = ? AND target_id IN ?", models.TargetComment, ids).
		Pluck("target_id", &parents).Error
	if err != nil {
		return nil, fmt.Errorf("load reply flags: %w", err)
	}
	for _, id := range parents {
		out[id] = true
	}
	return out, nil
}

// record counts the outcome of an operation. Client errors count as rejected.
func (s *CommentService) record(op string, err error) {
	switch {
	case err == nil:
		s.metrics.Operation(op, metrics.OutcomeSuccess)
	case apperr.From(err).Status < 500:
		s.metrics.Operation(op, metrics.OutcomeRejected)
	default:
		s.metrics.Operation(op, metrics.OutcomeError)
		s.log.WithError(err).WithField("op", op).Error("comment operation failed")
	}
}
