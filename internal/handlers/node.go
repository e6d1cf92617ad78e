package handlers

import (
	"osf/internal/middleware"
	"osf/internal/services"

	"github.com/gin-gonic/gin"
)

type NodeHandler struct {
	svc *services.NodeService
}

func NewNodeHandler(svc *services.NodeService) *NodeHandler {
	return &NodeHandler{svc: svc}
}

// ListNodes 展示当前用户可见的节点列表
func (h *NodeHandler) ListNodes(c *gin.Context) {
	filter := services.ParsePublicFilter(c.Query("filter[public]"))
	nodes, err := h.svc.ListVisible(c.Request.Context(), middleware.GetAuth(c).User, filter, c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"data": nodes})
}
