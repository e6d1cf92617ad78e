package services

import (
	"context"
	"errors"
	"fmt"

	"osf/internal/apperr"
	"osf/internal/authz"
	"osf/internal/models"
	"osf/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errSelfReport      = errors.New("cannot report own comment")
	errAlreadyReported = errors.New("comment already reported by user")
	errNotReported     = errors.New("comment not reported by user")
)

type ReportInput struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Report flags cid as abusive on behalf of the caller. Every failure past
// input validation surfaces as the same bad request.
func (s *CommentService) Report(ctx context.Context, ac *authz.Context, cid string, in ReportInput) error {
	err := s.report(ctx, ac, cid, in)
	s.record("report", err)
	return err
}

func (s *CommentService) report(ctx context.Context, ac *authz.Context, cid string, in ReportInput) error {
	c, err := s.loadComment(ctx, ac.Node, cid)
	if err != nil {
		return err
	}
	if in.Category == "" {
		return apperr.BadRequest("A report category is required.")
	}
	reporter := ac.Auth.UserID()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.UserID == reporter {
			return errSelfReport
		}
		last, err := latestReport(tx, c.ID, reporter)
		if err != nil {
			return err
		}
		if last != nil && last.Action == models.ReportActionReport {
			return errAlreadyReported
		}
		return tx.Create(&models.ReportEntry{
			CommentID:   c.ID,
			ReporterID:  reporter,
			Action:      models.ReportActionReport,
			Category:    in.Category,
			Text:        in.Text,
			DateCreated: s.clock(),
		}).Error
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"comment_id": c.ID, "user_id": reporter}).Warn("report rejected")
		return apperr.BadRequest("Could not report comment.")
	}
	s.log.WithFields(logrus.Fields{
		"op":         "report",
		"comment_id": c.ID,
		"node_id":    c.NodeID,
		"user_id":    reporter,
	}).Info("comment reported")
	return nil
}

// Unreport retracts the caller's active report on cid.
func (s *CommentService) Unreport(ctx context.Context, ac *authz.Context, cid string) error {
	err := s.unreport(ctx, ac, cid)
	s.record("unreport", err)
	return err
}

func (s *CommentService) unreport(ctx context.Context, ac *authz.Context, cid string) error {
	c, err := s.loadComment(ctx, ac.Node, cid)
	if err != nil {
		return err
	}
	reporter := ac.Auth.UserID()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		last, err := latestReport(tx, c.ID, reporter)
		if err != nil {
			return err
		}
		if last == nil || last.Action != models.ReportActionReport {
			return errNotReported
		}
		return tx.Create(&models.ReportEntry{
			CommentID:   c.ID,
			ReporterID:  reporter,
			Action:      models.ReportActionRetract,
			DateCreated: s.clock(),
		}).Error
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"comment_id": c.ID, "user_id": reporter}).Warn("unreport rejected")
		return apperr.BadRequest("Could not unreport comment.")
	}
	s.log.WithFields(logrus.Fields{
		"op":         "unreport",
		"comment_id": c.ID,
		"node_id":    c.NodeID,
		"user_id":    reporter,
	}).Info("comment report retracted")
	return nil
}

func latestReport(tx *gorm.DB, commentID, reporterID string) (*models.ReportEntry, error) {
	var entries []models.ReportEntry
	err := tx.Where("comment_id = ? AND reporter_id = ?", commentID, reporterID).
		Order("id DESC").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// reportedBy returns the ids among commentIDs that userID currently reports.
func (s *CommentService) reportedBy(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if userID == "" || len(commentIDs) == 0 {
		return out, nil
	}
	var entries []models.ReportEntry
	err := s.db.WithContext(ctx).
		Where("reporter_id = ? AND comment_id IN ?", userID, commentIDs).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	for _, e := range entries {
		out[e.CommentID] = e.Action == models.ReportActionReport
	}
	return out, nil
}

type ReportView struct {
	ReporterID  string `json:"reporterId"`
	Category    string `json:"category"`
	Text        string `json:"text"`
	DateCreated string `json:"dateCreated"`
}

type ReportedComment struct {
	Comment CommentView  `json:"comment"`
	Reports []ReportView `json:"reports"`
}

// ReportedComments lists every comment with at least one report in force,
// oldest report log first. Used by moderators.
func (s *CommentService) ReportedComments(ctx context.Context, viewerID string) ([]ReportedComment, error) {
	var entries []models.ReportEntry
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load report log: %w", err)
	}

	type key struct{ comment, reporter string }
	latest := make(map[key]models.ReportEntry)
	var order []key
	for _, e := range entries {
		k := key{e.CommentID, e.ReporterID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = e
	}

	active := make(map[string][]ReportView)
	var ids []string
	for _, k := range order {
		e := latest[k]
		if e.Action != models.ReportActionReport {
			continue
		}
		if _, ok := active[k.comment]; !ok {
			ids = append(ids, k.comment)
		}
		active[k.comment] = append(active[k.comment], ReportView{
			ReporterID:  e.ReporterID,
			Category:    e.Category,
			Text:        e.Text,
			DateCreated: utils.IsoFormat(e.DateCreated),
		})
	}
	if len(ids) == 0 {
		return []ReportedComment{}, nil
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("load reported comments: %w", err)
	}
	byID := make(map[string]*models.Comment, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}
	flags, err := s.childFlags(ctx, ids)
	if err != nil {
		return nil, err
	}
	reported, err := s.reportedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ReportedComment, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, ReportedComment{
			Comment: s.serialize(c, viewerID, false, flags[id], reported[id]),
			Reports: active[id],
		})
	}
	return out, nil
}
