package corpus

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/chriscorrea/topiclab/internal/store"
)

func syntheticDocs(n int) []Document {
	sci := []string{"galaxy", "telescope", "orbit", "planet", "stellar", "nebula"}
	sport := []string{"football", "referee", "goal", "striker", "penalty", "stadium"}

	docs := make([]Document, n)
	for i := range docs {
		words, label := sci, "sci"
		if i%2 == 1 {
			words, label = sport, "sport"
		}
		text := ""
		for k := 0; k < 4; k++ {
			text += words[(i+k)%len(words)] + " "
		}
		docs[i] = Document{Text: text, Label: label}
	}
	return docs
}

func TestSplitPartitionsAllDocuments(t *testing.T) {
	docs := syntheticDocs(20)
	rng := rand.New(rand.NewSource(1))

	train, val, test, err := Split(docs, DefaultFractions(), rng)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(train) != 12 || len(val) != 4 || len(test) != 4 {
		t.Errorf("split sizes = %d/%d/%d, want 12/4/4", len(train), len(val), len(test))
	}

	// every input document lands in exactly one split
	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.Text]++
	}
	for _, set := range [][]Document{train, val, test} {
		for _, d := range set {
			counts[d.Text]--
		}
	}
	for text, c := range counts {
		if c != 0 {
			t.Errorf("document %q unbalanced across splits (count %d)", text, c)
		}
	}
}

func TestSplitRejectsBadFractions(t *testing.T) {
	docs := syntheticDocs(20)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		f    Fractions
	}{
		{"zero train", Fractions{Train: 0, Val: 0.2}},
		{"zero validation", Fractions{Train: 0.6, Val: 0}},
		{"no test remainder", Fractions{Train: 0.8, Val: 0.2}},
		{"over unity", Fractions{Train: 0.9, Val: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := Split(docs, tt.f, rng); err == nil {
				t.Errorf("Split(%+v) expected error, got nil", tt.f)
			}
		})
	}
}

func TestSplitRejectsTooFewDocuments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, _, _, err := Split(syntheticDocs(2), DefaultFractions(), rng); err == nil {
		t.Error("Split() with 2 documents expected error, got nil")
	}
}

func TestSplitIsSeedDeterministic(t *testing.T) {
	docs := syntheticDocs(20)

	a, _, _, err := Split(docs, DefaultFractions(), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	b, _, _, err := Split(docs, DefaultFractions(), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different shuffles at index %d", i)
		}
	}
}

func TestBuildStore(t *testing.T) {
	docs := syntheticDocs(30)
	rng := rand.New(rand.NewSource(4))

	st, err := BuildStore(docs, DefaultFractions(), 0, rng)
	if err != nil {
		t.Fatalf("BuildStore() unexpected error: %v", err)
	}

	if got := st.Classes(); got != 2 {
		t.Errorf("Classes() = %d, want 2", got)
	}
	if got := st.ClassNames(); fmt.Sprint(got) != "[sci sport]" {
		t.Errorf("ClassNames() = %v, want [sci sport]", got)
	}
	if st.Terms() == 0 {
		t.Error("store has an empty vocabulary")
	}
	if len(st.FeatureNames()) != st.Terms() {
		t.Errorf("%d feature names for %d terms", len(st.FeatureNames()), st.Terms())
	}

	total := 0
	for _, s := range []store.Split{store.Train, store.Validation, store.Test} {
		total += st.Docs(s)
		for _, y := range st.Labels(s) {
			if y < 1 || y > 2 {
				t.Errorf("%s label %d out of range", s, y)
			}
		}
	}
	if total != len(docs) {
		t.Errorf("splits hold %d documents, want %d", total, len(docs))
	}
	if st.Docs(store.FullTrain) != st.Docs(store.Train)+st.Docs(store.Validation) {
		t.Error("full-train size is not train + validation")
	}
}
