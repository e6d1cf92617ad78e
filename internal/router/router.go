package router

import (
	"net/http"

	"osf/internal/handlers"
	"osf/internal/middleware"
	"osf/internal/services"
	"osf/internal/utils"
	"osf/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries everything the routes need.
type Deps struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Comments *services.CommentService
	Nodes    *services.NodeService
	Avatars  *utils.AvatarBuilder

	SessionName   string
	SessionSecret string
	APIMinVersion string
	APIMaxVersion string
	Templates     bool
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// New builds the engine with the global middleware chain and all routes.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 86400 * 30})
	r.Use(sessions.Sessions(d.SessionName, store))
	r.Use(middleware.LoadUser(d.DB, d.Log))
	r.Use(middleware.RequestLogger(d.Log))

	if d.Templates {
		r.HTMLRender = web.Renderer()
	}
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.DB, d.Log)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	nodeHandler := handlers.NewNodeHandler(d.Nodes)
	userHandler := handlers.NewUserHandler(d.DB, d.Avatars)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "OK") }) // 健康检查
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics)) // Prometheus 指标
	}

	// 评论页面 (Comments Page)
	if d.Templates {
		r.GET("/project/:nid/discussions", middleware.NodeAccess(d.DB), commentHandler.ViewComments)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.APIVersion(d.APIMinVersion, d.APIMaxVersion))

	// 公共接口 (Public API)
	api.POST("/auth/login", authHandler.Login)                                                 // 登录
	api.POST("/auth/logout", authHandler.Logout)                                               // 退出登录
	api.GET("/nodes", middleware.RequireScope(utils.ScopeNodesRead), nodeHandler.ListNodes)    // 可见节点列表
	api.GET("/users/:uid", middleware.RequireScope(utils.ScopeUsersRead), userHandler.Profile) // 用户资料

	// 管理接口 (Moderation API)
	api.GET("/comments/reported", middleware.AdminRequired(), commentHandler.Reported) // 被举报的评论

	// 节点评论 (Node Comments), contributor-or-public
	project := api.Group("/project/:nid")
	project.Use(middleware.NodeAccess(d.DB))
	{
		read := project.Group("")
		read.Use(middleware.RequireScope(utils.ScopeCommentsRead))
		read.GET("/comments", commentHandler.List)                  // 评论列表
		read.GET("/comments/discussion", commentHandler.Discussion) // 讨论参与者排名

		write := project.Group("")
		write.Use(middleware.AuthRequired(), middleware.RequireScope(utils.ScopeCommentsWrite))
		write.POST("/comment", commentHandler.Create)                      // 发表评论
		write.PUT("/comment/:cid", commentHandler.Edit)                    // 编辑评论
		write.DELETE("/comment/:cid", commentHandler.Delete)               // 删除评论
		write.PUT("/comment/:cid/undelete", commentHandler.Undelete)       // 恢复评论
		write.POST("/comment/:cid/report", commentHandler.Report)          // 举报评论
		write.POST("/comment/:cid/unreport", commentHandler.Unreport)      // 撤销举报
		write.PUT("/comments/timestamps", commentHandler.UpdateTimestamps) // 更新已读时间
	}
}
