package agent

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// PromptInput fills the prompt templates. NewRequirements and
// PreviousOutput are only used when revising.
type PromptInput struct {
	Destination     string
	NumDays         int
	NumPeople       int
	Budget          int
	Vibes           []string
	NewRequirements string
	PreviousOutput  string
}

// PromptFresh asks for a complete itinerary from scratch.
func PromptFresh(in PromptInput) (string, error) {
	return render("fresh.tmpl", in)
}

// PromptRevise asks the model to rework PreviousOutput to satisfy
// NewRequirements.
func PromptRevise(in PromptInput) (string, error) {
	return render("revise.tmpl", in)
}

func render(name string, in PromptInput) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
