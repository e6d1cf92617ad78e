package services

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"osf/internal/authz"
	"osf/internal/metrics"
	"osf/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T, conn *gorm.DB, clock *fakeClock, opts Options) *CommentService {
	t.Helper()
	opts.Clock = clock.Now
	if opts.Metrics == nil {
		m, err := metrics.New(nil)
		require.NoError(t, err)
		opts.Metrics = m
	}
	s, err := NewCommentService(conn, quietLogger(), opts)
	require.NoError(t, err)
	return s
}

func contextFor(user *models.User, node *models.Node) *authz.Context {
	return authz.New(authz.Auth{User: user}, node, nil)
}

func anonymousLinkContext(user *models.User, node *models.Node) *authz.Context {
	links := []models.PrivateLink{{Key: "secret", NodeID: node.ID, Anonymous: true}}
	return authz.New(authz.Auth{User: user, PrivateKey: "secret"}, node, links)
}
