// Package checkpoint persists trial results to disk as structured JSON so
// partial progress survives interruption and checkpoints stay portable and
// independently inspectable.
//
// Three records are written: results.json (per-method, per-trial accuracy,
// factor matrices, predictions, and iteration counts — overwritten after
// every trial), median.json (the median trial index per method, written once
// after all trials), and params.json (the run configuration).
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

const (
	resultsFile = "results.json"
	medianFile  = "median.json"
	paramsFile  = "params.json"
)

// Matrix is a JSON-encodable dense matrix in row-major order.
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// FromDense copies a gonum matrix into its serializable form. A nil input
// yields a nil Matrix, so absent factorizations round-trip cleanly.
func FromDense(m *mat.Dense) *Matrix {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	data := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = m.At(i, j)
		}
	}
	return &Matrix{Rows: r, Cols: c, Data: data}
}

// Dense reconstructs the gonum matrix.
func (m *Matrix) Dense() *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.NewDense(m.Rows, m.Cols, m.Data)
}

// Record is the serialized result collection. Every field maps a method name
// to one ordered value per completed trial; order is the trial index and is
// significant for median lookup.
type Record struct {
	Accuracy           map[string][]float64 `json:"accuracy"`
	Dictionary         map[string][]*Matrix `json:"dictionary"`
	Classification     map[string][]*Matrix `json:"classification"`
	Representation     map[string][]*Matrix `json:"representation"`
	TestRepresentation map[string][]*Matrix `json:"test_representation"`
	Predictions        map[string][][]int   `json:"predictions"`
	Iterations         map[string][]int     `json:"iterations"`
}

// NewRecord returns an empty record with all maps allocated.
func NewRecord() *Record {
	return &Record{
		Accuracy:           make(map[string][]float64),
		Dictionary:         make(map[string][]*Matrix),
		Classification:     make(map[string][]*Matrix),
		Representation:     make(map[string][]*Matrix),
		TestRepresentation: make(map[string][]*Matrix),
		Predictions:        make(map[string][][]int),
		Iterations:         make(map[string][]int),
	}
}

// Params is the serialized run configuration.
type Params struct {
	Rank     int       `json:"rank"`
	MaxIter  int       `json:"max_iter"`
	Trials   int       `json:"trials"`
	SSNMFTol []float64 `json:"ssnmf_tol"`
	Lambda   []float64 `json:"lambda"`
	NMFTol   float64   `json:"nmf_tol"`
	Search   bool      `json:"search"`
	Seed     int64     `json:"seed"`
}

// Writer persists records under a single directory.
type Writer struct {
	dir string
}

// NewWriter creates the checkpoint directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteResults overwrites results.json with the current record.
func (w *Writer) WriteResults(rec *Record) error {
	return w.write(resultsFile, rec)
}

// WriteMedian overwrites median.json with the median trial index per method.
func (w *Writer) WriteMedian(median map[string]int) error {
	return w.write(medianFile, median)
}

// WriteParams overwrites params.json with the run configuration.
func (w *Writer) WriteParams(p Params) error {
	return w.write(paramsFile, p)
}

// ReadResults loads the last checkpointed record, for resuming reporting or
// offline inspection.
func (w *Writer) ReadResults() (*Record, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, resultsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	rec := NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return rec, nil
}

// write marshals v with indentation and replaces the named file.
func (w *Writer) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
