package handlers

import (
	"net/http"

	"osf/internal/apperr"
	"osf/internal/middleware"
	"osf/internal/utils"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the HTML error page for err.
func RenderError(c *gin.Context, err error) {
	e := apperr.From(err)
	_ = c.Error(err)
	Render(c, e.Status, "error.html", gin.H{"Status": e.Status, "Error": e.Detail})
	c.Abort()
}

// fail answers a JSON API request with err.
func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// bindJSON decodes the body into obj, answering 400 on malformed input.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fail(c, apperr.BadRequest("Malformed request body."))
		return false
	}
	return true
}

// rejectBulk refuses the JSON API bulk extension on single-object endpoints.
// The raw header is used because gin's ContentType drops parameters.
func rejectBulk(c *gin.Context) bool {
	if utils.IsBulkRequest(c.GetHeader("Content-Type")) {
		fail(c, apperr.BadRequest("Bulk requests are not supported here."))
		return true
	}
	return false
}

func respond(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, obj)
}
