package trial

import (
	"math"
	"testing"
)

func TestMedianIndex(t *testing.T) {
	tests := []struct {
		name string
		acc  []float64
		want int
	}{
		{
			name: "odd length picks the median trial",
			acc:  []float64{0.70, 0.85, 0.60, 0.90, 0.75},
			want: 4, // sorted order is 0.60, 0.70, 0.75, 0.85, 0.90
		},
		{
			name: "single trial",
			acc:  []float64{0.5},
			want: 0,
		},
		{
			name: "even length uses the upper-middle rank",
			acc:  []float64{0.2, 0.8, 0.6, 0.4},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MedianIndex(tt.acc); got != tt.want {
				t.Errorf("MedianIndex(%v) = %d, want %d", tt.acc, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	c := NewCollection()
	for _, acc := range []float64{0.70, 0.85, 0.60, 0.90, 0.75} {
		c.Append(Model3, Result{Accuracy: acc})
	}

	s, err := c.Summarize(Model3)
	if err != nil {
		t.Fatalf("Summarize() unexpected error: %v", err)
	}
	if math.Abs(s.Mean-0.76) > 1e-12 {
		t.Errorf("Mean = %g, want 0.76", s.Mean)
	}
	if s.Median != 0.75 {
		t.Errorf("Median = %g, want 0.75", s.Median)
	}
	if s.MedianIndex != 4 {
		t.Errorf("MedianIndex = %d, want 4", s.MedianIndex)
	}
	if s.Stdev <= 0 {
		t.Errorf("Stdev = %g, want positive", s.Stdev)
	}
}

func TestSummarizeNeedsTwoSamples(t *testing.T) {
	c := NewCollection()
	c.Append(NB, Result{Accuracy: 0.9})
	if _, err := c.Summarize(NB); err == nil {
		t.Error("Summarize() expected error with a single sample, got nil")
	}
}

func TestMeanIters(t *testing.T) {
	c := NewCollection()
	c.Append(Model4, Result{Iters: 40})
	c.Append(Model4, Result{Iters: 60})
	if got := c.MeanIters(Model4); got != 50 {
		t.Errorf("MeanIters() = %g, want 50", got)
	}
	if got := c.MeanIters(Model5); got != 0 {
		t.Errorf("MeanIters() on empty method = %g, want 0", got)
	}
}
