package web

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererErrorPage(t *testing.T) {
	w := httptest.NewRecorder()
	err := Renderer().Instance("error.html", map[string]any{"Status": 404, "Error": "Wiki page not found."}).Render(w)
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, "<title>OSF</title>")
	assert.Contains(t, body, "<h1>404</h1>")
	assert.Contains(t, body, "Wiki page not found.")
}
