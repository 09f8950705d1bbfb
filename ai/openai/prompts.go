package openai

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = `You are a documentation assistant. Answer the user's question using the
reference passages provided below. Ground every claim in the passages when they are relevant. If the
passages do not contain the information needed, say so explicitly before answering from general
knowledge. Answer in plain prose, without restating the question.`

const contextBlockHeader = "Reference passages:"

// buildAnswerPrompt assembles the system prompt plus the retrieved context
// passages. With no passages, the model is told there is no reference
// material.
func buildAnswerPrompt(contexts []string) string {
	var sb strings.Builder
	sb.WriteString(answerSystemPrompt)
	sb.WriteString("\n\n")

	if len(contexts) == 0 {
		sb.WriteString("No reference passages were retrieved for this question.")
		return sb.String()
	}

	sb.WriteString(contextBlockHeader)
	for i, passage := range contexts {
		sb.WriteString(fmt.Sprintf("\n\n[%d] %s", i+1, passage))
	}
	return sb.String()
}
