package trial

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/chriscorrea/topiclab/internal/report"
	"github.com/chriscorrea/topiclab/internal/store"
)

// topKeywords is how many features are listed per topic in median reports.
const topKeywords = 10

// ReportMedian writes the classification report, top keywords, and heatmaps
// for each method's median-performing trial. Heatmap PNGs (raw and
// column-normalized) land in outDir; text goes to w.
func ReportMedian(st *store.Store, c *Collection, outDir string, w io.Writer) error {
	truth := st.Labels(store.Test)
	median := c.MedianIndices()

	for _, m := range FactorizationMethods() {
		idx, ok := median[m.String()]
		if !ok || idx >= len(c.Results[m]) {
			continue
		}
		res := c.Results[m][idx]

		fmt.Fprintf(w, "\n%s median trial results (trial %d, %d iterations)\n\n", m, idx, res.Iters)
		fmt.Fprint(w, report.ClassificationReport(truth, res.Predicted, st.ClassNames()))
		fmt.Fprint(w, report.FormatKeywords(report.TopKeywords(res.A, st.FeatureNames(), topKeywords)))

		base := m.String()
		if m != NMF {
			base = "SSNMF_" + base
		}
		if err := report.Heatmap(res.B, st.ClassNames(), filepath.Join(outDir, base+".png")); err != nil {
			slog.Error("heatmap failed", "method", m.String(), "err", err)
		}
		if err := report.Heatmap(report.NormalizeColumns(res.B), st.ClassNames(), filepath.Join(outDir, base+"_Normalized.png")); err != nil {
			slog.Error("heatmap failed", "method", m.String(), "err", err)
		}
	}

	if rs := c.Results[NB]; len(rs) > 0 {
		fmt.Fprintf(w, "\nNB results\n\n")
		fmt.Fprint(w, report.ClassificationReport(truth, rs[0].Predicted, st.ClassNames()))
	}

	if idx, ok := median["SVM"]; ok && idx < len(c.Results[SVM]) {
		fmt.Fprintf(w, "\nSVM median trial results (trial %d)\n\n", idx)
		fmt.Fprint(w, report.ClassificationReport(truth, c.Results[SVM][idx].Predicted, st.ClassNames()))
	}
	return nil
}

// WriteSummary prints the mean ± stdev accuracy, mean iteration counts, and
// median accuracy per method.
func (c *Collection) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\nAccuracy (mean ± sample stdev over trials)\n")
	fmt.Fprintf(w, "------------------------------------------\n")
	for _, m := range Methods() {
		if m == NB {
			if rs := c.Results[NB]; len(rs) > 0 {
				fmt.Fprintf(w, "%-8s %.4f (single deterministic run)\n", "NB", rs[0].Accuracy)
			}
			continue
		}
		s, err := c.Summarize(m)
		if err != nil {
			if acc := c.Accuracies(m); len(acc) == 1 {
				fmt.Fprintf(w, "%-8s %.4f (single trial, stdev undefined)\n", m, acc[0])
			}
			continue
		}
		fmt.Fprintf(w, "%-8s %.4f ± %.4f\n", m, s.Mean, s.Stdev)
	}

	fmt.Fprintf(w, "\nMean iteration counts (multiplicative updates)\n")
	fmt.Fprintf(w, "----------------------------------------------\n")
	for _, m := range FactorizationMethods() {
		if len(c.Results[m]) > 0 {
			fmt.Fprintf(w, "%-8s %.2f\n", m, c.MeanIters(m))
		}
	}

	fmt.Fprintf(w, "\nMedian accuracy\n")
	fmt.Fprintf(w, "---------------\n")
	for _, m := range Methods() {
		if m == NB {
			continue
		}
		if s, err := c.Summarize(m); err == nil {
			fmt.Fprintf(w, "%-8s %.4f (trial %d)\n", m, s.Median, s.MedianIndex)
		}
	}
}
