// Package markdown reads and writes notes made of YAML frontmatter and a
// body. Generated sections live between HTML comment markers so text the
// user adds around them survives a rewrite.
package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

type Note struct {
	Meta map[string]any
	Body string
}

// Parse splits content into frontmatter and body. Content that does not open
// with a fence is all body.
func Parse(content string) (Note, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	n := Note{Meta: map[string]any{}}
	if !strings.HasPrefix(content, fence+"\n") {
		n.Body = content
		return n, nil
	}
	rest := content[len(fence)+1:]

	var raw string
	switch end := strings.Index(rest, "\n"+fence+"\n"); {
	case strings.HasPrefix(rest, fence+"\n"):
		n.Body = rest[len(fence)+1:]
	case end >= 0:
		raw, n.Body = rest[:end], rest[end+len(fence)+2:]
	case strings.HasSuffix(rest, "\n"+fence):
		raw = strings.TrimSuffix(rest, "\n"+fence)
	default:
		return Note{}, fmt.Errorf("frontmatter: missing closing fence")
	}
	if err := yaml.Unmarshal([]byte(raw), &n.Meta); err != nil {
		return Note{}, fmt.Errorf("frontmatter: %w", err)
	}
	if n.Meta == nil {
		n.Meta = map[string]any{}
	}
	return n, nil
}

func (n Note) Render() (string, error) {
	if len(n.Meta) == 0 {
		return n.Body, nil
	}
	raw, err := yaml.Marshal(n.Meta)
	if err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}
	return fence + "\n" + string(raw) + fence + "\n" + n.Body, nil
}

// SetBlock replaces the generated block called name, appending it to the
// body when the note has none yet.
func (n *Note) SetBlock(name, generated string) {
	start, end := markers(name)
	block := start + "\n" + strings.TrimRight(generated, "\n") + "\n" + end
	if i, j, ok := n.blockBounds(name); ok {
		n.Body = n.Body[:i] + block + n.Body[j:]
		return
	}
	body := strings.TrimRight(n.Body, "\n")
	if body == "" {
		n.Body = block + "\n"
		return
	}
	n.Body = body + "\n\n" + block + "\n"
}

// Block returns the generated content of the named block.
func (n Note) Block(name string) (string, bool) {
	i, j, ok := n.blockBounds(name)
	if !ok {
		return "", false
	}
	start, end := markers(name)
	inner := n.Body[i+len(start) : j-len(end)]
	return strings.Trim(inner, "\n"), true
}

func (n Note) blockBounds(name string) (int, int, bool) {
	start, end := markers(name)
	i := strings.Index(n.Body, start)
	if i < 0 {
		return 0, 0, false
	}
	k := strings.Index(n.Body[i:], end)
	if k < 0 {
		return 0, 0, false
	}
	return i, i + k + len(end), true
}

func markers(name string) (string, string) {
	return "<!-- leverlab:" + name + ":start -->", "<!-- leverlab:" + name + ":end -->"
}
