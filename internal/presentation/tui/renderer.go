package tui

import (
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// speakerPalette colours speaker names; a speaker always maps to the same entry.
var speakerPalette = []string{"#f472b6", "#fb923c", "#facc15", "#4ade80", "#22d3ee", "#818cf8", "#c084fc"}

// Renderer writes dialogue lines, choices and story output to a terminal.
type Renderer struct {
	out      io.Writer
	profile  termenv.Profile
	markdown func(string) (string, error)
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithProfile overrides the detected colour profile.
func WithProfile(p termenv.Profile) RendererOption {
	return func(r *Renderer) {
		r.profile = p
	}
}

// WithMarkdown renders node text as markdown through glamour.
func WithMarkdown() RendererOption {
	return func(r *Renderer) {
		r.markdown = NewMarkdown()
	}
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{
		out:     w,
		profile: termenv.EnvColorProfile(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewMarkdown returns a function that renders markdown using glamour.
// If the renderer cannot be built, text is returned unchanged.
func NewMarkdown() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Line writes the text of node, prefixed by its speaker and emotion.
// Nodes without text write nothing.
func (r *Renderer) Line(node *domain.Node) {
	if node == nil || node.Text == "" {
		return
	}
	text := node.Text
	if r.markdown != nil {
		if rendered, err := r.markdown(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}

	if node.SpeakerID == "" {
		fmt.Fprintln(r.out, text)
		return
	}
	speaker := r.profile.String(node.SpeakerID).Bold().Foreground(r.profile.Color(speakerColor(node.SpeakerID)))
	if node.EmotionTag != "" {
		fmt.Fprintf(r.out, "%s (%s): %s\n", speaker, node.EmotionTag, text)
		return
	}
	fmt.Fprintf(r.out, "%s: %s\n", speaker, text)
}

// Choices writes a numbered list, starting at 1.
func (r *Renderer) Choices(choices []domain.Choice) {
	for i, c := range choices {
		text := c.Text
		if text == "" {
			text = "..."
		}
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, text)
	}
}

// Prompt writes the input prompt.
func (r *Renderer) Prompt() {
	fmt.Fprint(r.out, "> ")
}

// StoryLines writes what an external story emitted.
func (r *Renderer) StoryLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(r.out, r.profile.String(line).Italic())
	}
}

// Notice writes a dimmed status line.
func (r *Renderer) Notice(format string, args ...any) {
	fmt.Fprintln(r.out, r.profile.String(fmt.Sprintf(format, args...)).Faint())
}

func speakerColor(speaker string) string {
	h := fnv.New32a()
	h.Write([]byte(speaker))
	return speakerPalette[h.Sum32()%uint32(len(speakerPalette))]
}
