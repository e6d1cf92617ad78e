package handlers

import (
	"net/http"

	"osf/internal/apperr"
	"osf/internal/middleware"
	"osf/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc *services.CommentService
}

func NewCommentHandler(svc *services.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List 评论列表 GET /api/v1/project/:nid/comments?page=&target=
func (h *CommentHandler) List(c *gin.Context) {
	ac := middleware.GetAuthz(c)
	out, err := h.svc.List(c.Request.Context(), ac, c.Query("page"), c.Query("target"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, out)
}

// Discussion 参与者排名（按频率 / 按最近）
func (h *CommentHandler) Discussion(c *gin.Context) {
	ac := middleware.GetAuthz(c)
	out, err := h.svc.Discussion(c.Request.Context(), ac, c.Query("page"), c.Query("target"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, out)
}

func (h *CommentHandler) Create(c *gin.Context) {
	if rejectBulk(c) {
		return
	}
	var in services.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.svc.Create(c.Request.Context(), middleware.GetAuthz(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": view})
}

func (h *CommentHandler) Edit(c *gin.Context) {
	if rejectBulk(c) {
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &in) {
		return
	}
	view, err := h.svc.Edit(c.Request.Context(), middleware.GetAuthz(c), c.Param("cid"), in.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, view)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetAuthz(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{})
}

func (h *CommentHandler) Undelete(c *gin.Context) {
	if err := h.svc.Undelete(c.Request.Context(), middleware.GetAuthz(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{})
}

// Report 举报评论
func (h *CommentHandler) Report(c *gin.Context) {
	var in services.ReportInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.Report(c.Request.Context(), middleware.GetAuthz(c), c.Param("cid"), in); err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{})
}

// Unreport 撤销举报
func (h *CommentHandler) Unreport(c *gin.Context) {
	if err := h.svc.Unreport(c.Request.Context(), middleware.GetAuthz(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{})
}

// UpdateTimestamps 更新当前用户在该节点的评论已读时间
func (h *CommentHandler) UpdateTimestamps(c *gin.Context) {
	out, err := h.svc.UpdateReadCursor(c.Request.Context(), middleware.GetAuthz(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, out)
}

// Reported 管理员查看被举报的评论
func (h *CommentHandler) Reported(c *gin.Context) {
	out, err := h.svc.ReportedComments(c.Request.Context(), middleware.GetAuth(c).UserID())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"comments": out})
}

// ViewComments renders the discussion page of a node. ?cid= focuses one
// comment, ?wname= a wiki page; otherwise the node itself.
func (h *CommentHandler) ViewComments(c *gin.Context) {
	ctx := c.Request.Context()
	ac := middleware.GetAuthz(c)
	node := ac.Node

	pages, err := h.svc.WikiPages(ctx, node.ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	data := gin.H{
		"Title":         node.Title,
		"Node":          node,
		"IsContributor": ac.IsContributor(),
		"CanComment":    ac.CanComment() && node.CommentsEnabled(),
		"Anonymous":     ac.IsAnonymized(),
		"WikiPages":     pages,
	}
	if home, err := h.svc.WikiPage(ctx, node.ID, "home"); err != nil {
		RenderError(c, err)
		return
	} else if home != nil {
		data["WikiHome"] = home
	}

	// page/target select the comments rendered inline
	page, target := services.PageNode, ""
	switch {
	case c.Query("cid") != "":
		view, err := h.svc.Get(ctx, ac, c.Query("cid"))
		if err != nil {
			RenderError(c, err)
			return
		}
		data["Comment"] = view
		data["CommentTarget"] = view.Page
		data["CommentTargetID"] = node.ID
		page, target = view.Page, view.ID
	case c.Query("wname") != "":
		wiki, err := h.svc.WikiPage(ctx, node.ID, c.Query("wname"))
		if err != nil {
			RenderError(c, err)
			return
		}
		if wiki == nil {
			RenderError(c, apperr.NotFound("Wiki page not found."))
			return
		}
		data["CommentTarget"] = services.PageWiki
		data["CommentTargetID"] = wiki.PageName
		page, target = services.PageWiki, wiki.PageName
	default:
		data["CommentTarget"] = services.PageNode
		data["CommentTargetID"] = node.ID
	}

	list, err := h.svc.List(ctx, ac, page, target)
	if err != nil {
		RenderError(c, err)
		return
	}
	data["Comments"] = list.Comments
	data["NUnread"] = list.NUnread

	Render(c, http.StatusOK, "comments/view.html", data)
}
