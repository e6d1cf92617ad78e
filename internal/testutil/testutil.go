// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"osf/internal/db"
	"osf/internal/models"
)

// Base is the reference instant fixtures are laid out from.
var Base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// At returns Base shifted by d minutes.
func At(minutes int) time.Time {
	return Base.Add(time.Duration(minutes) * time.Minute)
}

// NewDB opens a migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// 每个连接都是独立的内存库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	return conn
}

func CreateUser(t *testing.T, conn *gorm.DB, id, fullname string) *models.User {
	t.Helper()
	u := &models.User{
		ID:          id,
		Username:    id + "@example.com",
		Fullname:    fullname,
		DateCreated: Base,
	}
	require.NoError(t, conn.Create(u).Error)
	return u
}

// CreateNode stores a node with the given contributors. level is the comment level.
func CreateNode(t *testing.T, conn *gorm.DB, id string, public bool, level string, contributors ...*models.User) *models.Node {
	t.Helper()
	n := &models.Node{
		ID:           id,
		Title:        "Project " + id,
		IsPublic:     public,
		CommentLevel: level,
		DateCreated:  Base,
		DateModified: Base,
	}
	for _, u := range contributors {
		n.Contributors = append(n.Contributors, *u)
	}
	if len(contributors) > 0 {
		n.CreatorID = contributors[0].ID
	}
	require.NoError(t, conn.Create(n).Error)
	return n
}

// CreateComment stores a comment directly, bypassing validation.
func CreateComment(t *testing.T, conn *gorm.DB, c models.Comment) *models.Comment {
	t.Helper()
	if c.TargetKind == "" {
		c.TargetKind = models.TargetNode
		c.TargetID = c.NodeID
	}
	if c.State == "" {
		c.State = models.CommentActive
	}
	if c.Page == "" {
		c.Page = "node"
	}
	if c.DateModified.IsZero() {
		c.DateModified = c.DateCreated
	}
	require.NoError(t, conn.Omit("User").Create(&c).Error)
	require.NoError(t, conn.Preload("User").First(&c, "id = ?", c.ID).Error)
	return &c
}
