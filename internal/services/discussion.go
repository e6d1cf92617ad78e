package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"osf/internal/authz"
	"osf/internal/models"
)

// targetKey addresses anything comments can hang off.
type targetKey struct {
	kind string
	id   string
}

// threadIndex is the child relation of one node's comments, built from a
// single query. Children keep creation order.
type threadIndex struct {
	all      []*models.Comment
	children map[targetKey][]*models.Comment
}

func newThreadIndex(comments []*models.Comment) *threadIndex {
	idx := &threadIndex{
		all:      comments,
		children: make(map[targetKey][]*models.Comment),
	}
	for _, c := range comments {
		k := targetKey{kind: c.TargetKind, id: c.TargetID}
		idx.children[k] = append(idx.children[k], c)
	}
	return idx
}

func (idx *threadIndex) childrenOf(kind, id string) []*models.Comment {
	return idx.children[targetKey{kind: kind, id: id}]
}

func (idx *threadIndex) hasChildren(c *models.Comment) bool {
	return len(idx.childrenOf(models.TargetComment, c.ID)) > 0
}

// Discussion groups non-deleted comments by author. Authors keep the order in
// which the traversal first met them.
type Discussion struct {
	order  []string
	byUser map[string][]*models.Comment
	users  map[string]*models.User
}

func NewDiscussion() *Discussion {
	return &Discussion{
		byUser: make(map[string][]*models.Comment),
		users:  make(map[string]*models.User),
	}
}

func (d *Discussion) add(c *models.Comment) {
	if _, ok := d.byUser[c.UserID]; !ok {
		d.order = append(d.order, c.UserID)
		u := c.User
		d.users[c.UserID] = &u
	}
	d.byUser[c.UserID] = append(d.byUser[c.UserID], c)
}

// Authors returns author ids in first-seen order.
func (d *Discussion) Authors() []string {
	return slices.Clone(d.order)
}

func (d *Discussion) Comments(userID string) []*models.Comment {
	return d.byUser[userID]
}

func (d *Discussion) User(userID string) *models.User {
	return d.users[userID]
}

// ByFrequency orders authors by comment count, highest first. Ties keep first-seen order.
func (d *Discussion) ByFrequency() []string {
	out := d.Authors()
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(len(d.byUser[b]), len(d.byUser[a]))
	})
	return out
}

// ByRecency orders authors by their newest comment's creation time, newest first.
func (d *Discussion) ByRecency() []string {
	latest := make(map[string]time.Time, len(d.order))
	for _, id := range d.order {
		comments := d.byUser[id]
		mostRecent := comments[0].DateCreated
		for _, c := range comments[1:] {
			if c.DateCreated.After(mostRecent) {
				mostRecent = c.DateCreated
			}
		}
		latest[id] = mostRecent
	}
	out := d.Authors()
	slices.SortStableFunc(out, func(a, b string) int {
		return latest[b].Compare(latest[a])
	})
	return out
}

// walk does a preorder depth-first traversal from seeds, adding every live
// comment to d. Deleted comments are skipped but their replies are still
// visited. visited guards against malformed (cyclic) target references.
func (idx *threadIndex) walk(seeds []*models.Comment, d *Discussion, visited map[string]bool) {
	stack := make([]*models.Comment, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		stack = append(stack, seeds[i])
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[c.ID] {
			continue
		}
		visited[c.ID] = true
		if !c.IsDeleted() {
			d.add(c)
		}
		kids := idx.childrenOf(models.TargetComment, c.ID)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// CollectDiscussion gathers the discussion below target into acc (a new one
// when acc is nil).
func (idx *threadIndex) CollectDiscussion(target Target, acc *Discussion) *Discussion {
	if acc == nil {
		acc = NewDiscussion()
	}
	if target.Missing() {
		return acc
	}
	idx.walk(idx.childrenOf(target.Kind, target.key()), acc, make(map[string]bool))
	return acc
}

// CollectTotal gathers every comment owned by the node, each exactly once.
func (idx *threadIndex) CollectTotal(acc *Discussion) *Discussion {
	if acc == nil {
		acc = NewDiscussion()
	}
	visited := make(map[string]bool)
	for _, c := range idx.all {
		if !visited[c.ID] {
			idx.walk([]*models.Comment{c}, acc, visited)
		}
	}
	return acc
}

type DiscussionEntry struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Fullname      string `json:"fullname"`
	IsContributor bool   `json:"isContributor"`
	GravatarURL   string `json:"gravatarUrl"`
}

type DiscussionView struct {
	ByFrequency []DiscussionEntry `json:"discussion_by_frequency"`
	ByRecency   []DiscussionEntry `json:"discussion_by_recency"`
}

// Discussion ranks the participants below the requested target. page "total"
// covers the whole node.
func (s *CommentService) Discussion(ctx context.Context, ac *authz.Context, page, guid string) (*DiscussionView, error) {
	start := time.Now()
	defer func() { s.metrics.DiscussionDuration(time.Since(start)) }()

	idx, err := s.loadIndex(ctx, ac.Node.ID)
	if err != nil {
		return nil, err
	}

	var d *Discussion
	if page == PageTotal {
		d = idx.CollectTotal(nil)
	} else {
		target, err := s.ResolveTarget(ctx, ac.Node, page, guid)
		if err != nil {
			return nil, err
		}
		d = idx.CollectDiscussion(target, nil)
	}

	anonymous := ac.IsAnonymized()
	view := &DiscussionView{
		ByFrequency: make([]DiscussionEntry, 0, len(d.order)),
		ByRecency:   make([]DiscussionEntry, 0, len(d.order)),
	}
	for _, id := range d.ByFrequency() {
		view.ByFrequency = append(view.ByFrequency, s.serializeDiscussion(ac.Node, d.User(id), anonymous))
	}
	for _, id := range d.ByRecency() {
		view.ByRecency = append(view.ByRecency, s.serializeDiscussion(ac.Node, d.User(id), anonymous))
	}
	return view, nil
}

func (s *CommentService) loadIndex(ctx context.Context, nodeID string) (*threadIndex, error) {
	var comments []*models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("node_id = ?", nodeID).
		Order("date_created ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("load comments for node %s: %w", nodeID, err)
	}
	return newThreadIndex(comments), nil
}
