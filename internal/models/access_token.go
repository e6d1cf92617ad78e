package models

import (
	"strings"
)

// AccessToken is a scoped personal access token. Only the sha256 of the token is stored.
type AccessToken struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `json:"name"`
	TokenHash string `gorm:"uniqueIndex;size:64;not null" json:"-"`
	UserID    string `gorm:"size:16;not null;index" json:"user_id"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Scopes    string `gorm:"type:text" json:"scopes"` // space separated
}

func (t *AccessToken) ScopeList() []string {
	return strings.Fields(t.Scopes)
}
