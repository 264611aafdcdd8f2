package seo

import (
	"embed"
	"strings"

	"github.com/yoockh/seopilot/internal/models"
)

//go:embed prompts/*.txt
var promptFiles embed.FS

type PromptSet struct {
	SystemPrompt       string
	UserPromptTemplate string
}

// DefaultPrompts returns the built-in prompts used when no stored
// configuration is active for the prompt type.
func DefaultPrompts(t models.PromptType) (PromptSet, bool) {
	switch t {
	case models.PromptTypeWriter:
		return PromptSet{readPrompt("writer_system.txt"), readPrompt("writer_user.txt")}, true
	case models.PromptTypeAuditor:
		return PromptSet{readPrompt("auditor_system.txt"), readPrompt("auditor_user.txt")}, true
	}
	return PromptSet{}, false
}

// StockPrompts are the richer prompts installed as seeded configurations.
func StockPrompts(t models.PromptType) (PromptSet, bool) {
	switch t {
	case models.PromptTypeWriter:
		return PromptSet{readPrompt("stock_writer_system.txt"), readPrompt("stock_writer_user.txt")}, true
	case models.PromptTypeAuditor:
		return PromptSet{readPrompt("stock_auditor_system.txt"), readPrompt("stock_auditor_user.txt")}, true
	}
	return PromptSet{}, false
}

func readPrompt(name string) string {
	b, err := promptFiles.ReadFile("prompts/" + name)
	if err != nil {
		panic("seo: missing embedded prompt " + name)
	}
	return strings.TrimRight(string(b), "\n")
}
