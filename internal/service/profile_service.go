package service

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ProfileContact 描述作品集页面展示的一个联系方式。
type ProfileContact struct {
	Platform string
	URL      string
}

// Profile aggregates the non-gallery content of the portfolio page.
type Profile struct {
	Title    string
	Intro    template.HTML
	Contacts []ProfileContact
}

// ProfileService 负责读取自我介绍与联系方式，与 handler 解耦
type ProfileService struct {
	title     string
	introPath string
	contacts  []ProfileContact
}

// NewProfileService 构造 ProfileService
func NewProfileService(title, introPath string, contacts []ProfileContact) *ProfileService {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Portfolio"
	}
	return &ProfileService{
		title:     title,
		introPath: strings.TrimSpace(introPath),
		contacts:  contacts,
	}
}

// Profile 读取介绍文件并渲染为安全的 HTML。文件不存在时介绍为空。
func (s *ProfileService) Profile() (Profile, error) {
	profile := Profile{
		Title:    s.title,
		Contacts: append([]ProfileContact(nil), s.contacts...),
	}
	if s.introPath == "" {
		return profile, nil
	}

	source, err := os.ReadFile(s.introPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return profile, nil
		}
		return profile, fmt.Errorf("read intro: %w", err)
	}

	intro, err := RenderMarkdown(string(source))
	if err != nil {
		return profile, err
	}
	profile.Intro = intro
	return profile, nil
}

// RenderMarkdown converts markdown into sanitized HTML.
func RenderMarkdown(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
