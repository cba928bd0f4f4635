package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/DaanHessen/snappr/internal/engine"
)

// Renderer turns a chat message body into terminal text.
type Renderer interface {
	Render(body string, width int) (string, error)
}

// glamourRenderer renders message bodies as markdown. Term renderers are
// built per width since glamour fixes word wrap at construction.
type glamourRenderer struct {
	style string
	cache map[int]*glamour.TermRenderer
}

// NewMarkdown returns a glamour backed renderer for the dark or light theme.
func NewMarkdown(theme string) Renderer {
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	return &glamourRenderer{style: style, cache: map[int]*glamour.TermRenderer{}}
}

func (g *glamourRenderer) Render(body string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, ok := g.cache[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(glamour.WithStandardStyle(g.style), glamour.WithWordWrap(width))
		if err != nil {
			return "", fmt.Errorf("markdown renderer: %w", err)
		}
		g.cache[width] = r
	}
	out, err := r.Render(body)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// plainRenderer wraps on spaces and never fails.
type plainRenderer struct{}

func NewPlain() Renderer { return plainRenderer{} }

func (plainRenderer) Render(body string, width int) (string, error) {
	if width <= 0 {
		return body, nil
	}
	var out []string
	for _, para := range strings.Split(body, "\n") {
		out = append(out, wrap(para, width)...)
	}
	return strings.Join(out, "\n"), nil
}

func wrap(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len([]rune(cur))+1+len([]rune(w)) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}

// WithFallback returns a renderer that prefers primary and falls back to backup on error.
func WithFallback(primary, fallback Renderer) Renderer {
	return &fallbackRenderer{p: primary, f: fallback}
}

type fallbackRenderer struct{ p, f Renderer }

func (r *fallbackRenderer) Render(body string, width int) (string, error) {
	if r.p == nil {
		return r.f.Render(body, width)
	}
	if s, err := r.p.Render(body, width); err == nil {
		return s, nil
	}
	return r.f.Render(body, width)
}

// Header is the author line shown above a message.
func Header(m engine.Message) string {
	if m.TS == "" {
		return m.Author
	}
	return fmt.Sprintf("%s  %s", m.Author, m.TS)
}

// Message renders a full message: header, body and its action label if any.
func Message(r Renderer, m engine.Message, width int) string {
	body, err := r.Render(m.Text, width)
	if err != nil {
		body = m.Text
	}
	var b strings.Builder
	b.WriteString(Header(m))
	b.WriteString("\n")
	b.WriteString(body)
	if m.Action != nil {
		fmt.Fprintf(&b, "\n[%d] %s", m.ID, m.Action.Label)
	}
	return b.String()
}
