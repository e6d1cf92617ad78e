package services

import (
	"context"
	"fmt"

	"osf/internal/apperr"
	"osf/internal/models"
	"osf/internal/utils"

	"gorm.io/gorm"
)

// ByID selects a row by primary key.
func ByID(id any) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", id)
	}
}

// GetObjectOrError loads the first T matching scopes. A missing row is a 404.
// Disabled users are a 410 carrying their public profile; other deleted
// entities are a 410 naming displayName when given.
func GetObjectOrError[T any](ctx context.Context, conn *gorm.DB, displayName string, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	var rows []T
	if err := conn.WithContext(ctx).Scopes(scopes...).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", displayName, err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("")
	}
	obj := &rows[0]

	switch v := any(obj).(type) {
	case *models.User:
		if v.IsDisabled {
			return nil, apperr.Gone("The requested user is no longer available.", map[string]any{
				"full_name":     v.Fullname,
				"family_name":   v.FamilyName,
				"given_name":    v.GivenName,
				"middle_names":  v.MiddleNames,
				"profile_image": utils.GravatarURL(v.Username, 0, true),
			})
		}
	case *models.Node:
		if v.IsDeleted {
			return nil, gone(displayName)
		}
	case *models.PrivateLink:
		if v.IsDeleted {
			return nil, gone(displayName)
		}
	case *models.Comment:
		if v.IsDeleted() {
			return nil, gone(displayName)
		}
	}
	return obj, nil
}

func gone(displayName string) error {
	if displayName == "" {
		return apperr.Gone("", nil)
	}
	return apperr.Gone(fmt.Sprintf("The requested %s is no longer available.", displayName), nil)
}

// LoadNode fetches a live node with its contributors and view-only links.
func LoadNode(ctx context.Context, conn *gorm.DB, nodeID string) (*models.Node, []models.PrivateLink, error) {
	node, err := GetObjectOrError[models.Node](ctx, conn, "node", ByID(nodeID), func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Contributors")
	})
	if err != nil {
		return nil, nil, err
	}
	var links []models.PrivateLink
	if err := conn.WithContext(ctx).Where("node_id = ? AND is_deleted = ?", node.ID, false).Find(&links).Error; err != nil {
		return nil, nil, fmt.Errorf("load private links: %w", err)
	}
	return node, links, nil
}
