package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearModel_Predict(t *testing.T) {
	// y = 3*x1 - x2 + 4
	m := &LinearModel{
		Coefficients: [][]float64{{3, -1}},
		Intercepts:   []float64{4},
	}
	assert.Equal(t, 2, m.NumFeatures())
	assert.Equal(t, 1, m.NumOutputs())

	out, err := m.Predict([][]float64{{1, 2}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5}, {13}}, out)
}

func TestLinearModel_Predict_WidthMismatch(t *testing.T) {
	m := &LinearModel{Coefficients: [][]float64{{1, 2}}, Intercepts: []float64{0}}
	_, err := m.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestArtifact_Ready(t *testing.T) {
	var a *Artifact
	assert.False(t, a.Ready())
	assert.False(t, (&Artifact{}).Ready())
	assert.True(t, (&Artifact{
		Predictor:  &LinearModel{Coefficients: [][]float64{{1}}, Intercepts: []float64{0}},
		TargetCols: []string{"y"},
	}).Ready())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.json",
		`{"coefficients": [[1, 0], [0, 1]], "intercepts": [10, 20]}`)
	targetPath := writeFile(t, dir, "target_cols.json", `["out_a", "out_b"]`)
	featurePath := writeFile(t, dir, "feature_cols.json", `["f1", "f2"]`)

	a, err := Load(modelPath, targetPath, featurePath)
	require.NoError(t, err)
	assert.True(t, a.Ready())
	assert.Equal(t, []string{"out_a", "out_b"}, a.TargetCols)
	assert.Equal(t, []string{"f1", "f2"}, a.FeatureCols)
	assert.Equal(t, 2, a.Predictor.NumFeatures())
}

func TestLoad_FeatureColsOptional(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.json",
		`{"coefficients": [[1, 2]], "intercepts": [0]}`)
	targetPath := writeFile(t, dir, "target_cols.json", `["y"]`)

	a, err := Load(modelPath, targetPath, filepath.Join(dir, "feature_cols.json"))
	require.NoError(t, err)
	assert.True(t, a.Ready())
	assert.Empty(t, a.FeatureCols)
}

func TestLoad_MissingModel(t *testing.T) {
	dir := t.TempDir()
	targetPath := writeFile(t, dir, "target_cols.json", `["y"]`)

	_, err := Load(filepath.Join(dir, "model.json"), targetPath, filepath.Join(dir, "feature_cols.json"))
	assert.Error(t, err)
}

func TestLoad_TargetCountMismatch(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.json",
		`{"coefficients": [[1]], "intercepts": [0]}`)
	targetPath := writeFile(t, dir, "target_cols.json", `["y1", "y2"]`)

	_, err := Load(modelPath, targetPath, filepath.Join(dir, "feature_cols.json"))
	assert.Error(t, err)
}

func TestLoad_FeatureCountMismatch(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.json",
		`{"coefficients": [[1, 2]], "intercepts": [0]}`)
	targetPath := writeFile(t, dir, "target_cols.json", `["y"]`)
	featurePath := writeFile(t, dir, "feature_cols.json", `["f1"]`)

	_, err := Load(modelPath, targetPath, featurePath)
	assert.Error(t, err)
}
