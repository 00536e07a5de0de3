package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestResultsRoundTrip(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	rec := NewRecord()
	rec.Accuracy["Model3"] = []float64{0.8, 0.9}
	rec.Iterations["Model3"] = []int{42, 37}
	rec.Predictions["NB"] = [][]int{{1, 2, 1}}
	rec.Dictionary["Model3"] = []*Matrix{
		FromDense(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})),
	}

	require.NoError(t, w.WriteResults(rec))

	got, err := w.ReadResults()
	require.NoError(t, err)
	assert.Equal(t, rec.Accuracy, got.Accuracy)
	assert.Equal(t, rec.Iterations, got.Iterations)
	assert.Equal(t, rec.Predictions["NB"], got.Predictions["NB"])

	d := got.Dictionary["Model3"][0].Dense()
	require.NotNil(t, d)
	assert.Equal(t, 5.0, d.At(1, 1))
}

func TestMatrixNilRoundTrip(t *testing.T) {
	assert.Nil(t, FromDense(nil))
	var m *Matrix
	assert.Nil(t, m.Dense())
}

func TestFromDenseRowMajor(t *testing.T) {
	m := FromDense(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{1, 2, 3, 4}, m.Data)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 2, m.Cols)
}

func TestWriteMedianAndParams(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteMedian(map[string]int{"Model3": 2, "SVM": 0}))
	require.NoError(t, w.WriteParams(Params{Rank: 10, Trials: 11, Seed: 1}))

	for _, name := range []string{"median.json", "params.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestReadResultsMissingFile(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	_, err = w.ReadResults()
	assert.Error(t, err)
}
