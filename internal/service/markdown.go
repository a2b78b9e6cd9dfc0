package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	lessonSanitizer = bluemonday.UGCPolicy()
	plainSanitizer  = bluemonday.StrictPolicy()
)

// RenderMarkdown 把课程 Markdown 渲染为经过清洗的 HTML
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return lessonSanitizer.Sanitize(buf.String()), nil
}

// sanitizePlain 去掉全部 HTML 标签
func sanitizePlain(raw string) string {
	return plainSanitizer.Sanitize(raw)
}
