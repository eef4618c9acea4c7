// internal/chat/prompt.go
package chat

import (
	"fmt"
	"strings"

	"github.com/mwiater/noteweave/internal/index"
)

// defaultInstruction is used when no system prompt is configured.
const defaultInstruction = "You are a helpful assistant answering questions about the user's personal notes. " +
	"Ground your answers in the provided notes when they are relevant, and say so when they are not."

// buildSystemPrompt assembles the system message. Ordering is significant:
// instruction, then user identity, then manually chosen notes in full, then
// retrieved excerpts labeled by source. Manual context precedes automatic
// context so the model orders trust by explicitness.
func buildSystemPrompt(instruction, userName string, notes []ContextNote, retrieved []index.MatchingChunk) string {
	var b strings.Builder

	if strings.TrimSpace(instruction) == "" {
		instruction = defaultInstruction
	}
	b.WriteString(instruction)

	if userName = strings.TrimSpace(userName); userName != "" {
		b.WriteString(fmt.Sprintf("\n\nThe user's name is %s.", userName))
	}

	if len(notes) > 0 {
		b.WriteString("\n\n## Reference notes\n")
		for _, note := range notes {
			b.WriteString(fmt.Sprintf("\n### %s\n%s\n", note.Path, strings.TrimSpace(note.Content)))
		}
	}

	if len(retrieved) > 0 {
		b.WriteString("\n\n## Possibly relevant excerpts\n")
		for _, match := range retrieved {
			b.WriteString(fmt.Sprintf("\n[source: %s, lines %d-%d]\n%s\n",
				match.Chunk.Path, match.Chunk.StartLine+1, match.Chunk.EndLine+1,
				strings.TrimSpace(match.Chunk.Text)))
		}
	}

	return b.String()
}
