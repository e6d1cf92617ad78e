package middleware

import (
	"strings"

	"osf/internal/apperr"
	"osf/internal/authz"
	"osf/internal/models"
	"osf/internal/services"
	"osf/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	CheckUserKey = "user"
	AuthKey      = "auth"
	AuthzKey     = "authz"
	SessionUser  = "user_id"
)

// LoadUser resolves the principal from the cookie session or a bearer token
// and stores it on the context. It never rejects a request.
func LoadUser(conn *gorm.DB, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := authz.Auth{PrivateKey: c.Query("view_only")}

		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUser).(string); ok && userID != "" {
			var user models.User
			res := conn.WithContext(c.Request.Context()).Where("id = ? AND is_disabled = ?", userID, false).Limit(1).Find(&user)
			if res.Error != nil {
				log.WithError(res.Error).Warn("load session user failed")
			} else if res.RowsAffected > 0 {
				auth.User = &user
			}
		} else if raw, ok := bearerToken(c); ok {
			var token models.AccessToken
			res := conn.WithContext(c.Request.Context()).Preload("User").
				Where("token_hash = ?", utils.HashToken(raw)).Limit(1).Find(&token)
			if res.Error != nil {
				log.WithError(res.Error).Warn("load access token failed")
			} else if res.RowsAffected > 0 && !token.User.IsDisabled {
				user := token.User
				auth.User = &user
				auth.ViaToken = true
				auth.Scopes = utils.NormalizeScopes(token.ScopeList())
			}
		}

		c.Set(AuthKey, auth)
		if auth.User != nil {
			c.Set(CheckUserKey, auth.User)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}

// GetAuth returns the principal set by LoadUser (anonymous if it did not run).
func GetAuth(c *gin.Context) authz.Auth {
	if v, ok := c.Get(AuthKey); ok {
		if auth, ok := v.(authz.Auth); ok {
			return auth
		}
	}
	return authz.Auth{PrivateKey: c.Query("view_only")}
}

// GetAuthz returns the context built by NodeAccess.
func GetAuthz(c *gin.Context) *authz.Context {
	v, _ := c.Get(AuthzKey)
	ac, _ := v.(*authz.Context)
	return ac
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).LoggedIn() {
			AbortWithError(c, apperr.Unauthorized("Authentication required."))
			return
		}
		c.Next()
	}
}

// RequireScope rejects token requests lacking scope. Session requests pass.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).HasScope(scope) {
			AbortWithError(c, apperr.Forbidden("Token lacks the "+scope+" scope."))
			return
		}
		c.Next()
	}
}

// AdminRequired lets through cookie sessions and tokens carrying the admin scope set.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := GetAuth(c)
		if !auth.LoggedIn() {
			AbortWithError(c, apperr.Unauthorized("Authentication required."))
			return
		}
		if !auth.IsAdmin() {
			AbortWithError(c, apperr.Forbidden("Administrative scope required."))
			return
		}
		c.Next()
	}
}

// NodeAccess loads the :nid node and enforces the contributor-or-public
// policy. The resulting authorization context is stored under AuthzKey.
func NodeAccess(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, links, err := services.LoadNode(c.Request.Context(), conn, c.Param("nid"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		auth := GetAuth(c)
		ac := authz.New(auth, node, links)
		if !ac.CanRead() {
			if !auth.LoggedIn() {
				AbortWithError(c, apperr.Unauthorized("Authentication required."))
			} else {
				AbortWithError(c, apperr.Forbidden("You do not have access to this node."))
			}
			return
		}
		c.Set(AuthzKey, ac)
		c.Next()
	}
}
