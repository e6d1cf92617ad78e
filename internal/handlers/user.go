package handlers

import (
	"osf/internal/models"
	"osf/internal/services"
	"osf/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db      *gorm.DB
	avatars *utils.AvatarBuilder
}

func NewUserHandler(conn *gorm.DB, avatars *utils.AvatarBuilder) *UserHandler {
	return &UserHandler{db: conn, avatars: avatars}
}

// Profile 用户公开资料，已停用的用户返回 410
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := services.GetObjectOrError[models.User](c.Request.Context(), h.db, "user", services.ByID(c.Param("uid")))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{
		"id":            user.ID,
		"full_name":     user.Fullname,
		"given_name":    user.GivenName,
		"middle_names":  user.MiddleNames,
		"family_name":   user.FamilyName,
		"date_created":  utils.IsoFormat(user.DateCreated),
		"url":           user.URL(),
		"profile_image": h.avatars.URL(user.Username, 0, true),
	})
}
