package models

import (
	"time"
)

type User struct {
	ID          string    `gorm:"primaryKey;size:16" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"` // email, also the gravatar key
	Fullname    string    `gorm:"not null" json:"fullname"`
	GivenName   string    `json:"given_name"`
	MiddleNames string    `json:"middle_names"`
	FamilyName  string    `json:"family_name"`
	Password    string    `json:"-"` // bcrypt hash
	IsDisabled  bool      `gorm:"default:false" json:"is_disabled"`
	DateCreated time.Time `gorm:"column:date_created" json:"date_created"`
}

// URL 用户主页相对路径
func (u *User) URL() string {
	return "/" + u.ID + "/"
}
