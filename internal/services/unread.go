package services

import (
	"context"
	"fmt"

	"osf/internal/authz"
	"osf/internal/models"
	"osf/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// UnreadCount counts comments on nodeID by other users that were both created
// and modified after the user's read cursor. Users without a cursor are
// measured against utils.Epoch.
func (s *CommentService) UnreadCount(ctx context.Context, nodeID, userID string) (int64, error) {
	conn := s.db.WithContext(ctx)

	cursor := utils.Epoch
	var rc models.ReadCursor
	res := conn.Where("user_id = ? AND node_id = ?", userID, nodeID).Limit(1).Find(&rc)
	if res.Error != nil {
		return 0, fmt.Errorf("load read cursor: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		cursor = rc.ViewedAt.UTC()
	}

	var n int64
	err := conn.Model(&models.Comment{}).
		Where("node_id = ?", nodeID).
		Where("user_id <> ?", userID).
		Where("date_created > ? AND date_modified > ?", cursor, cursor).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread comments: %w", err)
	}
	return n, nil
}

// UpdateReadCursor moves the caller's cursor on the node to now. Only
// contributors keep a cursor; everyone else gets an empty map.
func (s *CommentService) UpdateReadCursor(ctx context.Context, ac *authz.Context) (map[string]string, error) {
	if !ac.IsContributor() {
		return map[string]string{}, nil
	}
	now := s.clock()
	rc := models.ReadCursor{UserID: ac.Auth.UserID(), NodeID: ac.Node.ID, ViewedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rc).Error
	if err != nil {
		return nil, fmt.Errorf("save read cursor: %w", err)
	}
	s.log.WithFields(logrus.Fields{"node_id": rc.NodeID, "user_id": rc.UserID}).Debug("read cursor updated")
	return map[string]string{ac.Node.ID: utils.IsoFormat(now)}, nil
}
