// Package report renders human-readable results: per-class
// precision/recall/F1 reports, top-keyword listings per topic, and heatmap
// visualizations of classification matrices.
package report

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ClassificationReport formats per-class precision, recall, F1, and support
// for 1-indexed true and predicted labels, followed by accuracy and
// macro/weighted averages.
func ClassificationReport(truth, pred []int, classNames []string) string {
	classes := len(classNames)
	tp := make([]int, classes)
	fp := make([]int, classes)
	fn := make([]int, classes)
	support := make([]int, classes)

	for i := range truth {
		t, p := truth[i]-1, pred[i]-1
		if t < 0 || t >= classes || p < 0 || p >= classes {
			continue
		}
		support[t]++
		if t == p {
			tp[t]++
		} else {
			fp[p]++
			fn[t]++
		}
	}

	width := 12
	for _, name := range classNames {
		if len(name)+2 > width {
			width = len(name) + 2
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s  %9s  %9s  %9s\n\n", width, "", "precision", "recall", "f1-score", "support")

	var macroP, macroR, macroF float64
	var weightedP, weightedR, weightedF float64
	total := 0
	for c := 0; c < classes; c++ {
		p := safeDiv(float64(tp[c]), float64(tp[c]+fp[c]))
		r := safeDiv(float64(tp[c]), float64(tp[c]+fn[c]))
		f := safeDiv(2*p*r, p+r)
		fmt.Fprintf(&b, "%*s  %9.2f  %9.2f  %9.2f  %9d\n", width, classNames[c], p, r, f, support[c])

		macroP += p
		macroR += r
		macroF += f
		weightedP += p * float64(support[c])
		weightedR += r * float64(support[c])
		weightedF += f * float64(support[c])
		total += support[c]
	}

	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}

	n := float64(classes)
	tot := float64(total)
	fmt.Fprintf(&b, "\n%*s  %9s  %9s  %9.2f  %9d\n", width, "accuracy", "", "", safeDiv(float64(correct), float64(len(truth))), total)
	fmt.Fprintf(&b, "%*s  %9.2f  %9.2f  %9.2f  %9d\n", width, "macro avg", macroP/n, macroR/n, macroF/n, total)
	fmt.Fprintf(&b, "%*s  %9.2f  %9.2f  %9.2f  %9d\n", width, "weighted avg", safeDiv(weightedP, tot), safeDiv(weightedR, tot), safeDiv(weightedF, tot), total)
	return b.String()
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// TopKeywords returns the topN highest-weighted feature names for each topic
// column of a terms × topics dictionary matrix.
func TopKeywords(dict *mat.Dense, features []string, topN int) [][]string {
	terms, topics := dict.Dims()
	if topN > terms {
		topN = terms
	}

	out := make([][]string, topics)
	for t := 0; t < topics; t++ {
		idx := make([]int, terms)
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return dict.At(idx[a], t) > dict.At(idx[b], t)
		})

		words := make([]string, 0, topN)
		for _, i := range idx[:topN] {
			if i < len(features) {
				words = append(words, features[i])
			}
		}
		out[t] = words
	}
	return out
}

// FormatKeywords renders the keyword listing one topic per line.
func FormatKeywords(keywords [][]string) string {
	var b strings.Builder
	for t, words := range keywords {
		fmt.Fprintf(&b, "Topic %d: %s\n", t+1, strings.Join(words, ", "))
	}
	return b.String()
}

// NormalizeColumns returns a copy of m with every column scaled to sum to 1.
// Zero columns are left untouched.
func NormalizeColumns(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		for i := 0; i < rows; i++ {
			if sum > 0 {
				out.Set(i, j, m.At(i, j)/sum)
			} else {
				out.Set(i, j, m.At(i, j))
			}
		}
	}
	return out
}
