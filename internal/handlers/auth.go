package handlers

import (
	"strings"

	"osf/internal/apperr"
	"osf/internal/middleware"
	"osf/internal/models"
	"osf/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAuthHandler(conn *gorm.DB, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{db: conn, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginRequest
	if !bindJSON(c, &in) {
		return
	}

	var user models.User
	res := h.db.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(in.Email)).Limit(1).Find(&user)
	if res.Error != nil {
		fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 || !utils.CheckPasswordHash(in.Password, user.Password) {
		fail(c, apperr.Unauthorized("Invalid email or password."))
		return
	}

	// 检查用户是否被停用
	if user.IsDisabled {
		fail(c, apperr.Forbidden("This account has been disabled."))
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUser, user.ID)
	if err := session.Save(); err != nil {
		fail(c, err)
		return
	}
	h.log.WithField("user_id", user.ID).Info("user logged in")
	respond(c, gin.H{"id": user.ID, "full_name": user.Fullname})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{})
}
