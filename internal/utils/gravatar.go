package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	gravatarSecureBase = "https://secure.gravatar.com/avatar/"
	gravatarBase       = "http://gravatar.com/avatar/"
	avatarTTL          = time.Hour
)

// AvatarBuilder builds gravatar URLs and memoizes them.
type AvatarBuilder struct {
	cache *Cache[string]
}

func NewAvatarBuilder(cacheSize int) (*AvatarBuilder, error) {
	c, err := NewCache[string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &AvatarBuilder{cache: c}, nil
}

// URL returns the gravatar for username (the account email) at the given size.
func (b *AvatarBuilder) URL(username string, size int, useSSL bool) string {
	key := fmt.Sprintf("%s|%d|%t", username, size, useSSL)
	if u, ok := b.cache.Get(key); ok {
		return u
	}
	u := GravatarURL(username, size, useSSL)
	b.cache.Set(key, u, avatarTTL)
	return u
}

// GravatarURL is the uncached builder. The identicon default keeps avatars
// distinct for users without a gravatar.
func GravatarURL(username string, size int, useSSL bool) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(username))))
	base := gravatarBase
	if useSSL {
		base = gravatarSecureBase
	}
	params := map[string]string{"d": "identicon"}
	if size > 0 {
		params["s"] = strconv.Itoa(size)
	}
	return ExtendQuerystringParams(base+hex.EncodeToString(sum[:]), params)
}
