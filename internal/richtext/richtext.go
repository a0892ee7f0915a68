package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Renderer converts admin-authored content into sanitized HTML fragments.
// Malformed input renders to the empty string; errors never reach the page.
type Renderer struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewRenderer builds a renderer with a UGC sanitization policy.
func NewRenderer() *Renderer {
	return &Renderer{
		policy:   bluemonday.UGCPolicy(),
		markdown: goldmark.New(),
	}
}

// Render converts a structured document (JSON) to sanitized HTML. Any parse
// or shape failure yields "" so the render path stays exception-free; the
// caller is expected to log the returned error.
func (r *Renderer) Render(structuredDoc []byte) (string, error) {
	if len(bytes.TrimSpace(structuredDoc)) == 0 {
		return "", nil
	}

	var doc node
	if err := json.Unmarshal(structuredDoc, &doc); err != nil {
		return "", fmt.Errorf("richtext: malformed document: %w", err)
	}
	if doc.Type != "doc" {
		return "", fmt.Errorf("richtext: unexpected root node %q", doc.Type)
	}

	var sb strings.Builder
	for _, child := range doc.Content {
		if err := renderNode(&sb, child); err != nil {
			return "", err
		}
	}
	return r.policy.Sanitize(sb.String()), nil
}

// RenderMarkdown converts markdown to sanitized HTML with the same
// fail-closed contract as Render.
func (r *Renderer) RenderMarkdown(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("richtext: markdown convert: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

type node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Attrs   map[string]any `json:"attrs"`
	Marks   []mark         `json:"marks"`
	Content []node         `json:"content"`
}

type mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

func renderNode(sb *strings.Builder, n node) error {
	switch n.Type {
	case "paragraph":
		return renderWrapped(sb, "p", n.Content)
	case "heading":
		level := 2
		if raw, ok := n.Attrs["level"].(float64); ok && raw >= 1 && raw <= 6 {
			level = int(raw)
		}
		tag := fmt.Sprintf("h%d", level)
		return renderWrapped(sb, tag, n.Content)
	case "bulletList":
		return renderWrapped(sb, "ul", n.Content)
	case "orderedList":
		return renderWrapped(sb, "ol", n.Content)
	case "listItem":
		return renderWrapped(sb, "li", n.Content)
	case "blockquote":
		return renderWrapped(sb, "blockquote", n.Content)
	case "hardBreak":
		sb.WriteString("<br>")
		return nil
	case "text":
		renderText(sb, n)
		return nil
	default:
		return fmt.Errorf("richtext: unsupported node %q", n.Type)
	}
}

func renderWrapped(sb *strings.Builder, tag string, children []node) error {
	sb.WriteString("<" + tag + ">")
	for _, child := range children {
		if err := renderNode(sb, child); err != nil {
			return err
		}
	}
	sb.WriteString("</" + tag + ">")
	return nil
}

func renderText(sb *strings.Builder, n node) {
	opening, closing := markTags(n.Marks)
	sb.WriteString(opening)
	sb.WriteString(html.EscapeString(n.Text))
	sb.WriteString(closing)
}

func markTags(marks []mark) (string, string) {
	var opening, closing strings.Builder
	closers := make([]string, 0, len(marks))
	for _, m := range marks {
		switch m.Type {
		case "bold":
			opening.WriteString("<strong>")
			closers = append(closers, "</strong>")
		case "italic":
			opening.WriteString("<em>")
			closers = append(closers, "</em>")
		case "link":
			href, _ := m.Attrs["href"].(string)
			opening.WriteString(`<a href="` + html.EscapeString(href) + `">`)
			closers = append(closers, "</a>")
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closing.WriteString(closers[i])
	}
	return opening.String(), closing.String()
}
