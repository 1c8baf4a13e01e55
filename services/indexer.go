package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/models"
)

// Chapter assigned to documents whose path carries no chapter segment.
const defaultChapter = "Introduction"

// Indexer discovers source documents and drives chunking, embedding and
// upserting for each one. Deterministic chunk IDs make repeated runs
// over the same corpus convergent rather than duplicative.
type Indexer struct {
	chunker    *Chunker
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	vectorSize int
}

func NewIndexer(chunker *Chunker, embedder Embedder, store vectorstore.VectorStore, collection string, vectorSize int) *Indexer {
	return &Indexer{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		collection: collection,
		vectorSize: vectorSize,
	}
}

// ReindexAll walks root for documentation files and indexes each one
// independently. A failure on one document is logged and skipped; it
// never aborts the remaining documents.
func (ix *Indexer) ReindexAll(ctx context.Context, root string) (*models.ReindexReport, error) {
	if err := ix.store.EnsureCollection(ctx, ix.collection, ix.vectorSize, vectorstore.DistanceCosine); err != nil {
		return nil, err
	}

	report := &models.ReindexReport{Details: make([]models.IndexedFile, 0)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDocumentFile(path) {
			return nil
		}

		doc, err := DocumentFromFile(root, path)
		if err != nil {
			logger.Error("Failed to read document", "path", path, "error", err)
			report.FailedCount++
			return nil
		}

		chunks, err := ix.IndexDocument(ctx, doc)
		if err != nil {
			logger.Error("Failed to index document", "doc_id", doc.DocID, "error", err)
			report.FailedCount++
			return nil
		}

		report.IndexedCount++
		report.TotalChunks += chunks
		report.Details = append(report.Details, models.IndexedFile{
			File:   d.Name(),
			Chunks: chunks,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Re-index completed",
		"root", root,
		"indexed", report.IndexedCount,
		"failed", report.FailedCount,
		"chunks", report.TotalChunks)

	return report, nil
}

// IndexDocument chunks and embeds one document and upserts the points
// in a single call. Returns the number of chunks indexed.
func (ix *Indexer) IndexDocument(ctx context.Context, doc models.Document) (int, error) {
	segments := ix.chunker.Split(doc.Content)
	if len(segments) == 0 {
		return 0, fmt.Errorf("document %q has no indexable content", doc.DocID)
	}

	indexedAt := time.Now().UTC().Format(time.RFC3339)
	points := make([]vectorstore.Point, 0, len(segments))

	for i, segment := range segments {
		vector, err := ix.embedder.Embed(ctx, segment)
		if err != nil {
			return 0, err
		}
		points = append(points, vectorstore.Point{
			ID:     fmt.Sprintf("%s_chunk_%d", doc.DocID, i),
			Vector: vector,
			Payload: vectorstore.Payload{
				Text:       segment,
				DocID:      doc.DocID,
				Title:      doc.Title,
				URL:        doc.URL,
				Chapter:    doc.Chapter,
				ChunkIndex: i,
				IndexedAt:  indexedAt,
			},
		})
	}

	if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// DocumentFromFile reads a source file and derives its metadata from
// the path: title from the filename, url from the root-relative path,
// chapter from the first path segment containing "chapter".
func DocumentFromFile(root, path string) (models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.Document{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return models.Document{
		DocID:   stem,
		Title:   DeriveTitle(stem),
		URL:     DeriveURL(rel),
		Chapter: DeriveChapter(rel),
		Content: string(content),
	}, nil
}

// DeriveTitle turns a filename stem into a display title:
// hyphens become spaces, each word is title-cased.
func DeriveTitle(stem string) string {
	return titleCase(strings.ReplaceAll(stem, "-", " "))
}

// DeriveURL maps a root-relative file path to a site path: extension
// stripped, separators normalized, leading slash added.
func DeriveURL(rel string) string {
	slashed := filepath.ToSlash(rel)
	slashed = strings.TrimSuffix(slashed, filepath.Ext(slashed))
	return "/" + slashed
}

// DeriveChapter scans path segments for one containing the
// case-insensitive token "chapter"; the first match wins. Documents
// outside any chapter fall under the introduction.
func DeriveChapter(rel string) string {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		stem := strings.TrimSuffix(part, filepath.Ext(part))
		if strings.Contains(strings.ToLower(stem), "chapter") {
			return titleCase(strings.ReplaceAll(stem, "-", " "))
		}
	}
	return defaultChapter
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
