package view

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// FuncMap exposes the helpers used by the page templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"contactIcon":  ContactIcon,
		"contactLabel": ContactLabel,
		"toolbarIcon":  ToolbarIcon,
		"label":        ImageLabel,
		"imageSrc":     ImageSrc,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ImageLabel 返回图片卡片上的标签，名称为空时显示“未命名”。
func ImageLabel(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return "未命名"
}

// ImageSrc marks a stored image data URL as safe for an img src attribute.
// Anything that is not an embedded image is dropped.
func ImageSrc(dataURL string) template.URL {
	if strings.HasPrefix(dataURL, "data:image/") {
		return template.URL(dataURL)
	}
	return ""
}
