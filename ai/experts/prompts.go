package experts

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// PromptCourseInstructor is the role used by material_info.
const PromptCourseInstructor = "course_instructor"

const courseInstructorPrompt = `You are a teaching assistant for the course EG-UY 1004.
Answer the student's question using only the course materials below.
If the materials do not contain the answer, say so and point the student to the course portal.
Keep the answer short and cite the material titles you used.

Course materials:
{{range $i, $d := .Documents}}[{{inc $i}}]{{with $d.Title}} {{.}}{{end}}
{{$d.Content}}
{{else}}(no matching materials)
{{end}}`

// PromptDocument is a retrieved document as seen by a prompt template.
type PromptDocument struct {
	Title   string
	Content string
}

// Prompts is a registry of role prompt templates.
type Prompts struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

var funcs = template.FuncMap{"inc": func(i int) int { return i + 1 }}

// NewPrompts returns a registry holding the built-in roles.
func NewPrompts() *Prompts {
	p := &Prompts{templates: make(map[string]*template.Template)}
	if err := p.Register(PromptCourseInstructor, courseInstructorPrompt); err != nil {
		panic(err)
	}
	return p
}

// Register parses text as the template of role.
func (p *Prompts) Register(role, text string) error {
	tmpl, err := template.New(role).Funcs(funcs).Parse(text)
	if err != nil {
		return fmt.Errorf("parse prompt %s: %w", role, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates[role] = tmpl
	return nil
}

// Render executes the template of role over docs.
func (p *Prompts) Render(role string, docs []PromptDocument) (string, error) {
	p.mu.RLock()
	tmpl, ok := p.templates[role]
	p.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", role)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, struct{ Documents []PromptDocument }{docs}); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", role, err)
	}
	return sb.String(), nil
}
