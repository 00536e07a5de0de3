package corpus

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"

	"gonum.org/v1/gonum/mat"
)

// stopwords are common stemmed English words excluded from the vocabulary
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"are": {}, "was": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"have": {}, "has": {}, "had": {}, "they": {}, "them": {}, "their": {},
	"from": {}, "what": {}, "which": {}, "when": {}, "where": {}, "who": {},
	"will": {}, "would": {}, "there": {}, "been": {}, "were": {}, "can": {},
	"could": {}, "should": {}, "than": {}, "then": {}, "how": {}, "about": {},
	"into": {}, "out": {}, "some": {}, "other": {}, "more": {}, "also": {},
	"just": {}, "onli": {}, "veri": {}, "ani": {}, "becaus": {}, "doe": {},
}

// Vectorizer fits a TF-IDF vocabulary on training documents and transforms
// any document set into a terms × documents matrix over that vocabulary.
type Vectorizer struct {
	// MaxFeatures caps the vocabulary at the most frequent terms;
	// zero means unlimited.
	MaxFeatures int

	vocab    map[string]int
	features []string
	idf      []float64
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// FeatureNames returns the fitted vocabulary in column order.
func (v *Vectorizer) FeatureNames() []string { return v.features }

// Fit builds the vocabulary and inverse document frequencies from a set of
// documents. Terms are tokenized, lowercased, stemmed, and filtered against
// the stopword set; when MaxFeatures is set, the vocabulary keeps the terms
// with the highest document frequency.
func (v *Vectorizer) Fit(docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("corpus: cannot fit vectorizer on an empty document set")
	}

	docFreq := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool)
		for _, term := range tokenize(d.Text) {
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}
	if len(docFreq) == 0 {
		return fmt.Errorf("corpus: no usable terms in document set")
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	// highest document frequency first; ties broken alphabetically so the
	// vocabulary is stable across runs
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	v.vocab = make(map[string]int, len(terms))
	v.features = terms
	v.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		// smoothed idf keeps weights finite for terms in every document
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	slog.Debug("vectorizer fitted", "documents", len(docs), "vocabulary", len(terms))
	return nil
}

// Transform produces the terms × documents TF-IDF matrix for a document
// set, with columns L2-normalized.
func (v *Vectorizer) Transform(docs []Document) (*mat.Dense, error) {
	if v.vocab == nil {
		return nil, fmt.Errorf("corpus: vectorizer not fitted")
	}

	x := mat.NewDense(len(v.features), len(docs), nil)
	for j, d := range docs {
		counts := make(map[int]int)
		total := 0
		for _, term := range tokenize(d.Text) {
			if i, ok := v.vocab[term]; ok {
				counts[i]++
				total++
			}
		}
		if total == 0 {
			continue // document shares no vocabulary; leave a zero column
		}

		norm := 0.0
		for i, c := range counts {
			w := float64(c) / float64(total) * v.idf[i]
			x.Set(i, j, w)
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for i := range counts {
			x.Set(i, j, x.At(i, j)/norm)
		}
	}
	return x, nil
}

// tokenize splits text into lowercase stemmed terms, dropping short tokens,
// non-alphabetic tokens, and stopwords.
func tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		slog.Debug("tokenization failed, skipping document", "err", err)
		return nil
	}

	var terms []string
	for _, tok := range doc.Tokens() {
		t := strings.ToLower(tok.Text)
		if len(t) < 3 || !alphabetic(t) {
			continue
		}

		stemmed, err := snowball.Stem(t, "english", true)
		if err != nil {
			stemmed = t // fall back to the raw token
		}
		if _, skip := stopwords[stemmed]; skip {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// alphabetic reports whether s consists solely of letters.
func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
