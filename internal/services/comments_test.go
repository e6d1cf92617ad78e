package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"osf/internal/apperr"
	"osf/internal/metrics"
	"osf/internal/models"
	"osf/internal/testutil"
)

type commentFixture struct {
	conn    *gorm.DB
	clock   *fakeClock
	svc     *CommentService
	metrics *metrics.Metrics
	author  *models.User
	other   *models.User
	node    *models.Node
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	conn := testutil.NewDB(t)
	author := testutil.CreateUser(t, conn, "author", "Ada Author")
	other := testutil.CreateUser(t, conn, "other", "Olga Other")
	node := testutil.CreateNode(t, conn, "node1", true, models.CommentLevelPublic, author)
	m, err := metrics.New(nil)
	require.NoError(t, err)
	clock := &fakeClock{now: testutil.At(60)}
	return &commentFixture{
		conn:    conn,
		clock:   clock,
		svc:     newTestService(t, conn, clock, Options{MaxLength: 20, Metrics: m}),
		metrics: m,
		author:  author,
		other:   other,
		node:    node,
	}
}

func TestCreateComment(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	view, err := f.svc.Create(ctx, contextFor(f.author, f.node), CreateInput{Page: PageNode, Content: "  <b>hi</b> there  "})
	require.NoError(t, err)

	assert.Len(t, view.ID, guidLength)
	assert.Equal(t, "hi there", view.Content)
	assert.Contains(t, string(view.ContentHTML), "hi there")
	assert.Equal(t, "author", view.Author.ID)
	assert.Equal(t, "Ada Author", view.Author.Name)
	assert.Equal(t, f.node.ID, view.TargetID)
	assert.Equal(t, f.node.ID, view.RootID)
	assert.Equal(t, PageNode, view.Page)
	assert.Equal(t, "2024-03-01T10:00:00", view.DateCreated)
	assert.Equal(t, view.DateCreated, view.DateModified)
	assert.True(t, view.CanEdit)
	assert.False(t, view.IsDeleted)
	assert.False(t, view.Modified)

	var stored models.Comment
	require.NoError(t, f.conn.First(&stored, "id = ?", view.ID).Error)
	assert.Equal(t, "hi there", stored.Content)
	assert.Equal(t, models.CommentActive, stored.State)
	assert.Equal(t, f.node.ID, stored.NodeID)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.OperationCollector().WithLabelValues("create", metrics.OutcomeSuccess)))
}

func TestCreateCommentValidation(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	ac := contextFor(f.author, f.node)

	tests := []struct {
		name    string
		content string
	}{
		{"whitespace", "   "},
		{"markup only", " <script>alert(1)</script> "},
		{"too long", strings.Repeat("x", 21)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, ac, CreateInput{Page: PageNode, Content: tt.content})
			assert.True(t, apperr.Is(err, http.StatusBadRequest), "got %v", err)
		})
	}

	// exactly at the limit, counted in characters
	_, err := f.svc.Create(ctx, ac, CreateInput{Page: PageNode, Content: strings.Repeat("é", 20)})
	assert.NoError(t, err)

	var n int64
	f.conn.Model(&models.Comment{}).Count(&n)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 3.0, promtest.ToFloat64(f.metrics.OperationCollector().WithLabelValues("create", metrics.OutcomeRejected)))
}

func TestCreateCommentPermissions(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	disabled := testutil.CreateNode(t, f.conn, "node2", true, "", f.author)
	_, err := f.svc.Create(ctx, contextFor(f.author, disabled), CreateInput{Content: "hello"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	private := testutil.CreateNode(t, f.conn, "node3", true, models.CommentLevelPrivate, f.author)
	_, err = f.svc.Create(ctx, contextFor(f.other, private), CreateInput{Content: "hello"})
	assert.True(t, apperr.Is(err, http.StatusForbidden))

	_, err = f.svc.Create(ctx, contextFor(f.author, private), CreateInput{Content: "hello"})
	assert.NoError(t, err)

	// public level still needs a logged-in user
	_, err = f.svc.Create(ctx, contextFor(nil, f.node), CreateInput{Content: "hello"})
	assert.True(t, apperr.Is(err, http.StatusForbidden))
}

func TestCreateReplyTracksThreadRoot(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, contextFor(f.author, f.node), CreateInput{Page: PageNode, Content: "root"})
	require.NoError(t, err)
	reply, err := f.svc.Create(ctx, contextFor(f.other, f.node), CreateInput{Page: PageNode, Target: root.ID, Content: "reply"})
	require.NoError(t, err)
	nested, err := f.svc.Create(ctx, contextFor(f.author, f.node), CreateInput{Page: PageNode, Target: reply.ID, Content: "nested"})
	require.NoError(t, err)

	assert.Equal(t, root.ID, reply.TargetID)
	assert.Equal(t, root.ID, reply.RootID)
	assert.Equal(t, reply.ID, nested.TargetID)
	assert.Equal(t, root.ID, nested.RootID)

	list, err := f.svc.List(ctx, contextFor(f.author, f.node), PageNode, "")
	require.NoError(t, err)
	require.Len(t, list.Comments, 1)
	assert.True(t, list.Comments[0].HasChildren)
}

func TestCreateCommentTargets(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	ac := contextFor(f.author, f.node)
	require.NoError(t, f.conn.Create(&models.WikiPage{ID: "wiki1", NodeID: f.node.ID, PageName: "home", Version: 1}).Error)

	_, err := f.svc.Create(ctx, ac, CreateInput{Page: PageNode, Target: "unknown", Content: "x"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	_, err = f.svc.Create(ctx, ac, CreateInput{Page: PageWiki, Target: "absent", Content: "x"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	byName, err := f.svc.Create(ctx, ac, CreateInput{Page: PageWiki, Target: "home", Content: "by name"})
	require.NoError(t, err)
	assert.Equal(t, "home", byName.TargetID)
	assert.Equal(t, PageWiki, byName.Page)

	byID, err := f.svc.Create(ctx, ac, CreateInput{Page: PageWiki, Target: "wiki1", Content: "by id"})
	require.NoError(t, err)
	assert.Equal(t, "home", byID.TargetID)

	list, err := f.svc.List(ctx, ac, PageWiki, "home")
	require.NoError(t, err)
	assert.Len(t, list.Comments, 2)

	// comments of another node are not valid targets
	otherNode := testutil.CreateNode(t, f.conn, "node9", true, models.CommentLevelPublic, f.author)
	foreign, err := f.svc.Create(ctx, contextFor(f.author, otherNode), CreateInput{Content: "elsewhere"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, ac, CreateInput{Page: PageNode, Target: foreign.ID, Content: "x"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
}

func TestEditComment(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, contextFor(f.author, f.node), CreateInput{Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, contextFor(f.other, f.node), created.ID, "hijack")
	assert.True(t, apperr.Is(err, http.StatusForbidden))

	_, err = f.svc.Edit(ctx, contextFor(f.author, f.node), created.ID, "  ")
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	_, err = f.svc.Edit(ctx, contextFor(f.author, f.node), "zzzzz", "second")
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	f.clock.now = testutil.At(90)
	edited, err := f.svc.Edit(ctx, contextFor(f.author, f.node), created.ID, " <i>second</i> ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, edited.ID)
	assert.Equal(t, created.Author, edited.Author)
	assert.Equal(t, "second", edited.Content)
	assert.True(t, edited.Modified)
	assert.Equal(t, created.DateCreated, edited.DateCreated)
	assert.Equal(t, "2024-03-01T10:30:00", edited.DateModified)

	var stored models.Comment
	require.NoError(t, f.conn.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "second", stored.Content)
	assert.True(t, stored.Modified)
	assert.Equal(t, f.node.ID, stored.NodeID)
	assert.Equal(t, f.author.ID, stored.UserID)
}

func TestDeleteAndUndelete(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	ac := contextFor(f.author, f.node)
	created, err := f.svc.Create(ctx, ac, CreateInput{Content: "keep me"})
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.svc.Delete(ctx, contextFor(f.other, f.node), created.ID), http.StatusForbidden))

	require.NoError(t, f.svc.Delete(ctx, ac, created.ID))
	view, err := f.svc.Discussion(ctx, ac, PageNode, "")
	require.NoError(t, err)
	assert.Empty(t, view.ByFrequency)

	list, err := f.svc.List(ctx, ac, PageNode, "")
	require.NoError(t, err)
	require.Len(t, list.Comments, 1)
	assert.True(t, list.Comments[0].IsDeleted)

	require.NoError(t, f.svc.Undelete(ctx, ac, created.ID))
	view, err = f.svc.Discussion(ctx, ac, PageNode, "")
	require.NoError(t, err)
	require.Len(t, view.ByFrequency, 1)
	assert.Equal(t, f.author.ID, view.ByFrequency[0].ID)

	var stored models.Comment
	require.NoError(t, f.conn.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "keep me", stored.Content)
	assert.False(t, stored.IsDeleted())
}

func TestListComments(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, contextFor(f.author, f.node), CreateInput{Content: "one"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, contextFor(f.other, f.node), CreateInput{Target: first.ID, Content: "two"})
	require.NoError(t, err)

	t.Run("direct children only", func(t *testing.T) {
		list, err := f.svc.List(ctx, contextFor(f.other, f.node), PageNode, "")
		require.NoError(t, err)
		require.Len(t, list.Comments, 1)
		assert.Equal(t, first.ID, list.Comments[0].ID)
		assert.False(t, list.Comments[0].CanEdit)
		assert.Zero(t, list.NUnread, "non-contributors get no unread count")
	})

	t.Run("total", func(t *testing.T) {
		list, err := f.svc.List(ctx, contextFor(f.author, f.node), PageTotal, "")
		require.NoError(t, err)
		assert.Len(t, list.Comments, 2)
		assert.EqualValues(t, 1, list.NUnread)
	})

	t.Run("anonymized", func(t *testing.T) {
		list, err := f.svc.List(ctx, anonymousLinkContext(nil, f.node), PageTotal, "")
		require.NoError(t, err)
		for _, c := range list.Comments {
			assert.Empty(t, c.Author.ID)
			assert.Empty(t, c.Author.URL)
			assert.Empty(t, c.Author.GravatarURL)
			assert.Equal(t, PrivateName, c.Author.Name)
			assert.False(t, c.CanEdit)
		}
	})

	t.Run("unknown comment id", func(t *testing.T) {
		_, err := f.svc.Get(ctx, contextFor(f.author, f.node), "nope1")
		assert.True(t, apperr.Is(err, http.StatusBadRequest))
	})
}
