package search

import (
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/storage"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Image          *model.ImageRecord
	Index          int // position in the searched slice
	MatchedIndexes []int
	Score          int
}

// imageNames implements fuzzy.Source for an image slice.
type imageNames []model.ImageRecord

func (in imageNames) String(i int) string {
	return in[i].Name
}

func (in imageNames) Len() int {
	return len(in)
}

// FuzzySearchImages searches images by name using fuzzy matching.
// Returns results sorted by match score (best first). The images are not
// copied, so results point into the given slice.
func FuzzySearchImages(images []model.ImageRecord, query string) []SearchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, imageNames(images))

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Image:          &images[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// DocumentResult is a fuzzy match against upload history.
type DocumentResult struct {
	Document       *storage.Document
	MatchedIndexes []int
	Score          int
}

// documentText implements fuzzy.Source. Name and description are searched together.
type documentText []storage.Document

func (dt documentText) String(i int) string {
	if dt[i].Description == "" {
		return dt[i].Name
	}
	return dt[i].Name + " " + dt[i].Description
}

func (dt documentText) Len() int {
	return len(dt)
}

// FuzzySearchDocuments searches uploaded documents by name and description.
// An empty query returns every document in its original order.
func FuzzySearchDocuments(docs []storage.Document, query string) []DocumentResult {
	if query == "" {
		results := make([]DocumentResult, len(docs))
		for i := range docs {
			results[i] = DocumentResult{Document: &docs[i]}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, documentText(docs))

	results := make([]DocumentResult, len(matches))
	for i, m := range matches {
		results[i] = DocumentResult{
			Document:       &docs[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
