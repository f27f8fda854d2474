// Package preprocessing provides feature extraction utilities for text,
// converting raw documents into sparse term-count matrices.
package preprocessing

import (
	"sort"
	"strings"
	"unicode"

	"github.com/scigolabs/nbtext/core/model"
	"github.com/scigolabs/nbtext/core/parallel"
	"github.com/scigolabs/nbtext/pkg/errors"
	"github.com/scigolabs/nbtext/sparse"
)

// parallelDocThreshold is the corpus size below which vectorization runs
// sequentially.
const parallelDocThreshold = 256

// CountVectorizer converts a collection of text documents into a sparse
// matrix of token counts, compatible with scikit-learn's CountVectorizer
// under its default vocabulary policy: lowercase text, word tokens of two or
// more alphanumeric characters, no stop-word filtering, and a vocabulary of
// sorted unique terms so column order is deterministic.
type CountVectorizer struct {
	state *model.StateManager

	// Hyperparameters
	lowercase bool
	binary    bool
	minDF     int

	// Learned parameters
	vocabulary_ map[string]int
	terms_      []string
}

// CountVectorizerOption is a functional option for CountVectorizer.
type CountVectorizerOption func(*CountVectorizer)

// WithLowercase controls whether documents are lowercased before
// tokenization (default true).
func WithLowercase(lowercase bool) CountVectorizerOption {
	return func(cv *CountVectorizer) {
		cv.lowercase = lowercase
	}
}

// WithBinary makes all nonzero counts 1 (default false).
func WithBinary(binary bool) CountVectorizerOption {
	return func(cv *CountVectorizer) {
		cv.binary = binary
	}
}

// WithMinDF drops terms that appear in fewer than minDF documents
// (default 1).
func WithMinDF(minDF int) CountVectorizerOption {
	return func(cv *CountVectorizer) {
		cv.minDF = minDF
	}
}

// NewCountVectorizer creates a CountVectorizer with the default policy.
func NewCountVectorizer(opts ...CountVectorizerOption) *CountVectorizer {
	cv := &CountVectorizer{
		state:     model.NewStateManager(),
		lowercase: true,
		binary:    false,
		minDF:     1,
	}
	for _, opt := range opts {
		opt(cv)
	}
	return cv
}

// tokenize splits text into word tokens: maximal runs of letters, digits and
// underscores of length >= 2, the default token pattern of scikit-learn's
// CountVectorizer.
func (cv *CountVectorizer) tokenize(text string) []string {
	if cv.lowercase {
		text = strings.ToLower(text)
	}
	var tokens []string
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if tok := text[start:i]; tokenLongEnough(tok) {
				tokens = append(tokens, tok)
			}
			start = -1
		}
	}
	if start >= 0 {
		if tok := text[start:]; tokenLongEnough(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// tokenLongEnough reports whether the token has at least two runes.
func tokenLongEnough(tok string) bool {
	n := 0
	for range tok {
		n++
		if n >= 2 {
			return true
		}
	}
	return false
}

// Fit builds the vocabulary from the corpus.
func (cv *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.NewModelError("CountVectorizer.Fit", "empty corpus", errors.ErrEmptyData)
	}
	if cv.minDF < 1 {
		return errors.NewValidationError("minDF", "must be at least 1", cv.minDF)
	}

	// Document frequency per term.
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range cv.tokenize(doc) {
			if _, ok := seen[tok]; !ok {
				df[tok]++
				seen[tok] = struct{}{}
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= cv.minDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return errors.NewModelError("CountVectorizer.Fit", "no terms survived vocabulary extraction", errors.ErrEmptyVocabulary)
	}
	sort.Strings(terms)

	cv.terms_ = terms
	cv.vocabulary_ = make(map[string]int, len(terms))
	for i, term := range terms {
		cv.vocabulary_[term] = i
	}

	cv.state.SetDimensions(len(terms), len(docs))
	cv.state.SetFitted()
	return nil
}

// Transform converts documents into a sparse term-count matrix with one row
// per document. Terms outside the fitted vocabulary are ignored.
func (cv *CountVectorizer) Transform(docs []string) (*sparse.CSR, error) {
	if err := cv.state.RequireFitted(); err != nil {
		return nil, errors.NewNotFittedError("CountVectorizer", "Transform")
	}
	if len(docs) == 0 {
		return nil, errors.NewModelError("CountVectorizer.Transform", "empty corpus", errors.ErrEmptyData)
	}

	type row struct {
		cols []int
		vals []float64
	}
	rows := make([]row, len(docs))

	// Per-document counting is independent, so documents are vectorized in
	// parallel; output order is fixed by the row slice.
	parallel.ParallelizeWithThreshold(len(docs), parallelDocThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			counts := make(map[int]float64)
			for _, tok := range cv.tokenize(docs[i]) {
				if col, ok := cv.vocabulary_[tok]; ok {
					counts[col]++
				}
			}
			cols := make([]int, 0, len(counts))
			for col := range counts {
				cols = append(cols, col)
			}
			sort.Ints(cols)
			vals := make([]float64, len(cols))
			for k, col := range cols {
				if cv.binary {
					vals[k] = 1
				} else {
					vals[k] = counts[col]
				}
			}
			rows[i] = row{cols: cols, vals: vals}
		}
	})

	nnz := 0
	for i := range rows {
		nnz += len(rows[i].cols)
	}
	rowPtr := make([]int, len(docs)+1)
	colIdx := make([]int, 0, nnz)
	data := make([]float64, 0, nnz)
	for i := range rows {
		colIdx = append(colIdx, rows[i].cols...)
		data = append(data, rows[i].vals...)
		rowPtr[i+1] = len(colIdx)
	}

	return sparse.NewCSR(len(docs), len(cv.terms_), rowPtr, colIdx, data)
}

// FitTransform fits the vocabulary and transforms the corpus in one call.
func (cv *CountVectorizer) FitTransform(docs []string) (*sparse.CSR, error) {
	if err := cv.Fit(docs); err != nil {
		return nil, err
	}
	return cv.Transform(docs)
}

// Vocabulary returns the mapping from term to column index.
func (cv *CountVectorizer) Vocabulary() map[string]int {
	vocab := make(map[string]int, len(cv.vocabulary_))
	for term, idx := range cv.vocabulary_ {
		vocab[term] = idx
	}
	return vocab
}

// FeatureNames returns the vocabulary terms in column order.
func (cv *CountVectorizer) FeatureNames() []string {
	return append([]string(nil), cv.terms_...)
}

// NFeatures returns the vocabulary size.
func (cv *CountVectorizer) NFeatures() int {
	return len(cv.terms_)
}
