package services

import (
	"context"
	"fmt"

	"osf/internal/models"
)

// WikiPage returns the newest version of the named page, or nil.
func (s *CommentService) WikiPage(ctx context.Context, nodeID, name string) (*models.WikiPage, error) {
	var pages []models.WikiPage
	err := s.db.WithContext(ctx).
		Where("node_id = ? AND page_name = ?", nodeID, name).
		Order("version DESC").
		Limit(1).
		Find(&pages).Error
	if err != nil {
		return nil, fmt.Errorf("load wiki page %q: %w", name, err)
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

// WikiPages lists the page names of a node.
func (s *CommentService) WikiPages(ctx context.Context, nodeID string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.WikiPage{}).
		Where("node_id = ?", nodeID).
		Distinct("page_name").
		Order("page_name ASC").
		Pluck("page_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list wiki pages: %w", err)
	}
	return names, nil
}
