package llm

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
)

// OutOfScopeMarker is what the model is told to reply when the context does not cover the question.
const OutOfScopeMarker = "I don't know"

const templatePrefixChars = 200

const promptFormat = "Context:\n%s\n\nQuestion:\n%s\n" +
	"Answer clearly and specifically using only the relevant information in the context. " +
	"If there is not enough information, answer '" + OutOfScopeMarker + "'."

// BuildPrompt embeds context and query in the fixed template. When maxChars is
// positive the context is cut so the whole prompt stays within it.
func BuildPrompt(contextText, query string, maxChars int) string {
	if maxChars > 0 {
		overhead := len([]rune(fmt.Sprintf(promptFormat, "", query)))
		room := maxChars - overhead
		if room < 0 {
			room = 0
		}
		contextText = truncateRunes(contextText, room)
	}
	return fmt.Sprintf(promptFormat, contextText, query)
}

// StripEcho removes the prompt when a model repeats it before answering.
func StripEcho(output, prompt string) string {
	if prompt != "" && strings.HasPrefix(output, prompt) {
		output = output[len(prompt):]
	}
	return strings.TrimSpace(output)
}

// TemplateAnswer builds a reply straight from the context, used whenever no model output is available.
func TemplateAnswer(contextText, query string) string {
	if strings.TrimSpace(contextText) == "" {
		return config.NoRelevantInfoAnswer
	}
	excerpt := truncateRunes(contextText, templatePrefixChars) + "..."
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "python") && strings.Contains(strings.ToLower(contextText), "python"):
		return "According to the information found: " + excerpt
	case strings.Contains(q, "experience"):
		return "Based on the available information: " + excerpt
	case strings.Contains(q, "university") && strings.Contains(contextText, "University"):
		return "According to the documents: " + excerpt
	case strings.Contains(q, "project"):
		return "Information found about projects: " + excerpt
	}
	return "I found the following relevant information: " + excerpt
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
