// Package web embeds the server-rendered templates.
package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/gin-contrib/multitemplate"
)

var (
	//go:embed templates/layouts/base.html
	baseLayout string
	//go:embed templates/views/error.html
	errorView string
	//go:embed templates/views/comments/view.html
	commentsView string
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
	}
}

// Renderer registers every view under the name handlers render it by.
func Renderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	fm := funcMap()
	add := func(name, view string) {
		// 根模板只负责调用 base 布局
		r.AddFromStringsFuncs(name, fm, baseLayout, view, `{{ template "base" . }}`)
	}
	add("comments/view.html", commentsView)
	add("error.html", errorView)
	return r
}
