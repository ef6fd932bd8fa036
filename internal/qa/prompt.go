package qa

import (
	"fmt"
	"strings"

	"github.com/docqa/docqa/internal/vectorstore"
)

// RefusalAnswer is the exact sentence the model is instructed to return when
// the retrieved context does not contain the answer. Callers can compare
// against it to detect unanswerable questions.
const RefusalAnswer = "I cannot find this information in the provided document."

const promptTemplate = `You are an expert Q&A assistant. Your task is to answer the user's question based *only* on the provided context.
- Read the context carefully.
- If the answer is in the context, provide a clear and concise answer.
- If the answer is not in the context, you MUST say '%s'
- Do not use any outside knowledge or make up information.

Context: %s
Question: %s
Answer:
`

// BuildPrompt stuffs the retrieved chunks into the grounding prompt for one
// question. Chunks are joined in retrieval order, most relevant first.
func BuildPrompt(question string, results []vectorstore.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
	}
	context := strings.Join(parts, "\n\n")
	return fmt.Sprintf(promptTemplate, RefusalAnswer, context, question)
}
