// Package ml wraps the pre-trained failure classifier and its preprocessing
// artifacts. Inference is pure and in-process; the artifacts are loaded once
// at startup and treated as read-only for the process lifetime.
package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the assets directory. One JSON file per
// artifact, mirroring the training export layout.
const (
	ModelFile   = "model.json"
	ScalerFile  = "scaler.json"
	EncoderFile = "encoder.json"
	ColumnsFile = "training_columns.json"
)

// Assets is the immutable bundle the predictor needs: the classifier, its
// feature scaler, its label encoder, and the exact ordered list of feature
// columns the classifier was trained on. Load once, share by reference,
// never mutate.
type Assets struct {
	Classifier *Classifier
	Scaler     *StandardScaler
	Encoder    *LabelEncoder
	Columns    []string
}

// LoadAssets reads the four artifacts from dir. It returns an error if any
// artifact is missing or inconsistent; callers are expected to degrade to a
// predictor without assets rather than abort startup.
func LoadAssets(dir string) (*Assets, error) {
	var clf Classifier
	if err := readJSON(filepath.Join(dir, ModelFile), &clf); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	var scaler StandardScaler
	if err := readJSON(filepath.Join(dir, ScalerFile), &scaler); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	var encoder LabelEncoder
	if err := readJSON(filepath.Join(dir, EncoderFile), &encoder); err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}

	var columns []string
	if err := readJSON(filepath.Join(dir, ColumnsFile), &columns); err != nil {
		return nil, fmt.Errorf("load training columns: %w", err)
	}

	assets := &Assets{
		Classifier: &clf,
		Scaler:     &scaler,
		Encoder:    &encoder,
		Columns:    columns,
	}
	if err := assets.Validate(); err != nil {
		return nil, fmt.Errorf("validate assets: %w", err)
	}
	return assets, nil
}

// Validate checks the artifacts agree on feature and class dimensions.
func (a *Assets) Validate() error {
	if a.Classifier == nil || a.Scaler == nil || a.Encoder == nil {
		return fmt.Errorf("incomplete asset bundle")
	}
	n := len(a.Columns)
	if n == 0 {
		return fmt.Errorf("training columns are empty")
	}
	if err := a.Classifier.Validate(); err != nil {
		return err
	}
	if got := a.Classifier.NumFeatures(); got != n {
		return fmt.Errorf("classifier expects %d features, training columns list %d", got, n)
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return fmt.Errorf("scaler dimensions (%d/%d) do not match %d training columns",
			len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	if got := a.Classifier.NumClasses(); got != a.Encoder.NumClasses() {
		return fmt.Errorf("classifier has %d classes, encoder has %d", got, a.Encoder.NumClasses())
	}
	return nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
