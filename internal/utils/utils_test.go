package utils

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace only", "   \n\t ", ""},
		{"trims", "  hello  ", "hello"},
		{"strips tags", "hello <b>world</b>", "hello world"},
		{"drops scripts", "<script>alert(1)</script>ok", "ok"},
		{"tag only", "<p></p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanContent(tt.in))
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, s := range []string{"plain", "a <i>b</i> c", "x < y", "<a href=\"http://x\">link</a>"} {
		once := Sanitize(s)
		assert.Equal(t, once, Sanitize(once), s)
	}
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>x</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestGravatarURL(t *testing.T) {
	u := GravatarURL(" Fred@Example.com ", 20, true)
	assert.Equal(t, "https://secure.gravatar.com/avatar/6255165076a5e31273cbda50bb9f9636?d=identicon&s=20", u)
	assert.Equal(t, GravatarURL("fred@example.com", 20, true), u)

	plain := GravatarURL("fred@example.com", 0, false)
	assert.True(t, strings.HasPrefix(plain, "http://gravatar.com/avatar/"))
	assert.True(t, strings.HasSuffix(plain, "?d=identicon"))
}

func TestAvatarBuilderCaches(t *testing.T) {
	b, err := NewAvatarBuilder(2)
	require.NoError(t, err)

	first := b.URL("a@example.com", 20, true)
	assert.Equal(t, first, b.URL("a@example.com", 20, true))
	assert.Equal(t, 1, b.cache.Len())

	b.URL("b@example.com", 20, true)
	b.URL("c@example.com", 20, true)
	assert.Equal(t, 2, b.cache.Len())
}

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache[int](4)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 7, time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestIsoFormat(t *testing.T) {
	assert.Equal(t, "1970-01-01T12:00:00", IsoFormat(Epoch))
	ts := time.Date(2015, 6, 1, 9, 30, 5, 123456000, time.UTC)
	assert.Equal(t, "2015-06-01T09:30:05.123456", IsoFormat(ts))
	local := ts.In(time.FixedZone("X", 3600))
	assert.Equal(t, "2015-06-01T09:30:05.123456", IsoFormat(local))
}

func TestNewGUID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		g := NewGUID(5)
		require.Len(t, g, 5)
		for _, r := range g {
			assert.Contains(t, guidChars, string(r))
		}
		seen[g] = true
	}
	assert.Greater(t, len(seen), 40)
}

func TestTruthyFalsy(t *testing.T) {
	for _, v := range []string{"t", "T", "true", "True", "TRUE", "1"} {
		assert.True(t, IsTruthy(v), v)
		assert.False(t, IsFalsy(v), v)
	}
	for _, v := range []string{"f", "F", "false", "False", "FALSE", "0"} {
		assert.True(t, IsFalsy(v), v)
	}
	assert.False(t, IsTruthy("yes"))
	assert.False(t, IsFalsy(""))
}

func TestIsBulkRequest(t *testing.T) {
	assert.True(t, IsBulkRequest("application/vnd.api+json; ext=bulk"))
	assert.False(t, IsBulkRequest("application/json"))
}

func TestAbsoluteReverse(t *testing.T) {
	got := AbsoluteReverse("http://localhost:8000/v2/", "/nodes/abc12/", url.Values{"view_only": {"key"}})
	assert.Equal(t, "http://localhost:8000/v2/nodes/abc12/?view_only=key", got)
	assert.Equal(t, "http://api.test/users/u1/", AbsoluteReverse("http://api.test", "users/u1", nil))
}

func TestExtendQuerystring(t *testing.T) {
	got := ExtendQuerystringParams("http://x.test/a?b=1", map[string]string{"c": "2"})
	assert.Equal(t, "http://x.test/a?b=1&c=2", got)

	q := url.Values{"view_only": {"abc"}}
	assert.Equal(t, "http://x.test/a?view_only=abc", ExtendQuerystringIfKeyExists("http://x.test/a", q, "view_only"))
	assert.Equal(t, "http://x.test/a", ExtendQuerystringIfKeyExists("http://x.test/a", q, "page"))
}

func TestIsDeprecated(t *testing.T) {
	assert.False(t, IsDeprecated("2.0", "2.0", "2.1"))
	assert.False(t, IsDeprecated("2.1", "2.0", "2.1"))
	assert.True(t, IsDeprecated("1.9", "2.0", "2.1"))
	assert.True(t, IsDeprecated("2.10", "2.0", "2.9"))
	assert.False(t, IsDeprecated("2.9", "2.0", "2.10"))
}

func TestNormalizeScopes(t *testing.T) {
	granted := NormalizeScopes([]string{"osf.full_read", "bogus"})
	assert.True(t, granted[ScopeCommentsRead])
	assert.False(t, granted[ScopeCommentsWrite])
	assert.False(t, ScopesInclude(granted, AdminLevel))

	admin := NormalizeScopes([]string{"osf.admin"})
	assert.True(t, ScopesInclude(admin, AdminLevel))
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.NotEqual(t, h, HashToken("abd"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestEnhanceHTMLContent(t *testing.T) {
	out := string(EnhanceHTMLContent(`<p><a href="https://example.com">x</a> <a href="/abc12/">y</a></p><p><img src="https://example.com/a.png"></p>`))
	assert.Contains(t, out, `rel="nofollow noreferrer noopener"`)
	assert.Contains(t, out, `<a href="/abc12/">y</a>`)
	assert.Contains(t, out, `loading="lazy"`)
	assert.NotContains(t, out, "<body>")

	assert.Empty(t, EnhanceHTMLContent(""))
}
