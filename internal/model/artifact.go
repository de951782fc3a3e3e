// Package model loads the trained predictor and its metadata from disk once
// at startup. The artifact is read-only afterwards and safe to share across
// requests.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Predictor consumes one aligned feature matrix per request and returns one
// output row per input row.
type Predictor interface {
	Predict(features [][]float64) ([][]float64, error)
	NumFeatures() int
}

// Artifact bundles the predictor with the column metadata it was trained
// with. FeatureCols is optional; when present the pipeline reorders uploads
// to match it.
type Artifact struct {
	Predictor   Predictor
	TargetCols  []string
	FeatureCols []string
}

// Ready reports whether the artifact can serve predictions.
func (a *Artifact) Ready() bool {
	return a != nil && a.Predictor != nil && len(a.TargetCols) > 0
}

// LinearModel is a multi-output linear predictor: one coefficient row and
// one intercept per target column.
type LinearModel struct {
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

func (m *LinearModel) NumFeatures() int {
	if len(m.Coefficients) == 0 {
		return 0
	}
	return len(m.Coefficients[0])
}

func (m *LinearModel) NumOutputs() int {
	return len(m.Coefficients)
}

func (m *LinearModel) Predict(features [][]float64) ([][]float64, error) {
	width := m.NumFeatures()
	out := make([][]float64, len(features))
	for r, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", r+1, len(row), width)
		}
		or := make([]float64, len(m.Coefficients))
		for o, coefs := range m.Coefficients {
			v := m.Intercepts[o]
			for i, c := range coefs {
				v += c * row[i]
			}
			or[o] = v
		}
		out[r] = or
	}
	return out, nil
}

// Load reads the model and its column metadata from fixed paths. The feature
// column list is optional; its absence just disables column reordering.
func Load(modelPath, targetColsPath, featureColsPath string) (*Artifact, error) {
	var lm LinearModel
	if err := readJSON(modelPath, &lm); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if len(lm.Coefficients) == 0 {
		return nil, fmt.Errorf("load model: %s has no coefficients", modelPath)
	}
	if len(lm.Intercepts) != len(lm.Coefficients) {
		return nil, fmt.Errorf("load model: %d intercepts for %d outputs", len(lm.Intercepts), len(lm.Coefficients))
	}
	for i, row := range lm.Coefficients {
		if len(row) != len(lm.Coefficients[0]) {
			return nil, fmt.Errorf("load model: coefficient row %d has ragged width", i)
		}
	}

	var targets []string
	if err := readJSON(targetColsPath, &targets); err != nil {
		return nil, fmt.Errorf("load target columns: %w", err)
	}
	if len(targets) != lm.NumOutputs() {
		return nil, fmt.Errorf("model emits %d outputs but %d target columns given", lm.NumOutputs(), len(targets))
	}

	var features []string
	if _, err := os.Stat(featureColsPath); err == nil {
		if err := readJSON(featureColsPath, &features); err != nil {
			return nil, fmt.Errorf("load feature columns: %w", err)
		}
		if len(features) != lm.NumFeatures() {
			return nil, fmt.Errorf("model expects %d features but %d feature columns given", lm.NumFeatures(), len(features))
		}
	}

	return &Artifact{Predictor: &lm, TargetCols: targets, FeatureCols: features}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
