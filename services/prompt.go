package services

import (
	"fmt"
	"strings"

	"rag-chatbot-backend/models"
)

// ragSystemPrompt instructs the model to answer strictly from the
// supplied context and cite sources with a fixed marker format.
const ragSystemPrompt = `You are a helpful Q&A assistant for "Introduction to RAG" book.

Your responsibilities:
1. Answer questions based ONLY on the provided context from the book
2. Always cite specific sections in your answers
3. If information is not in the context, clearly state that
4. Be concise yet thorough in your explanations
5. Use markdown formatting for clarity

Response Guidelines:
- Begin with a direct answer to the question
- Provide supporting details from the context
- Include citations in the format: **Source: [Page Title]**
- Format code with proper syntax highlighting
- Use bullet points and headers for structure

Quality Standards:
- Do not invent information not present in the context
- Ask for clarification if the question is ambiguous
- Maintain a helpful and educational tone
- Reference multiple sources when relevant
`

// Labels for the pinned user-selection context entry.
const (
	pinnedTitle   = "Selected Text"
	pinnedChapter = "User Selection"
)

// PromptBuilder renders retrieved passages plus the question into a
// single grounding prompt. It is pure: same inputs, byte-identical
// output.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt returns the fixed system instruction for the generator.
func (pb *PromptBuilder) SystemPrompt() string {
	return ragSystemPrompt
}

// Build renders the context chunks in the exact order received
// (highest relevance first) followed by the verbatim question.
func (pb *PromptBuilder) Build(question string, contextChunks []models.SearchResult) string {
	blocks := make([]string, 0, len(contextChunks))
	for i, chunk := range contextChunks {
		blocks = append(blocks, fmt.Sprintf(`--- Context %d ---
**Title**: %s (%s)
**URL**: %s
**Relevance**: %.2f

%s
`, i+1, chunk.Title, chunk.Chapter, chunk.URL, chunk.Score, chunk.Text))
	}

	contextText := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(`Based on the following context from the book, please answer the question.

Context:
%s

Question: %s

Please provide a comprehensive answer based on the context above. Include citations to the source sections.`, contextText, question)
}

// BuildWithPinned prepends a user-selected passage ahead of the
// retrieved chunks with a sentinel relevance score of 1.0, regardless
// of retrieval ranking.
func (pb *PromptBuilder) BuildWithPinned(question, selectedText, pageURL string, contextChunks []models.SearchResult) string {
	pinned := models.SearchResult{
		Text:    selectedText,
		Title:   pinnedTitle,
		URL:     pageURL,
		Chapter: pinnedChapter,
		Score:   1.0,
	}
	all := make([]models.SearchResult, 0, len(contextChunks)+1)
	all = append(all, pinned)
	all = append(all, contextChunks...)
	return pb.Build(question, all)
}

// PinnedSource is the citation entry for a pinned selection.
func (pb *PromptBuilder) PinnedSource(pageURL string) models.Source {
	return models.Source{
		PageTitle:      pinnedTitle,
		PageURL:        pageURL,
		Section:        pinnedChapter,
		RelevanceScore: 1.0,
	}
}
