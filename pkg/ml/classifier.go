package ml

import (
	"fmt"
	"math"
)

// Classifier is a multinomial logistic regression model exported from the
// training pipeline: one weight row and one intercept per class. Inference is
// a matrix-vector product followed by softmax, so the per-class outputs form
// a probability distribution summing to 1.
type Classifier struct {
	// Weights is classes x features.
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// Validate checks the model shape is usable.
func (c *Classifier) Validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("classifier has no weight rows")
	}
	if len(c.Intercepts) != len(c.Weights) {
		return fmt.Errorf("classifier has %d weight rows but %d intercepts", len(c.Weights), len(c.Intercepts))
	}
	width := len(c.Weights[0])
	if width == 0 {
		return fmt.Errorf("classifier weight rows are empty")
	}
	for i, row := range c.Weights {
		if len(row) != width {
			return fmt.Errorf("weight row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

// NumClasses returns the number of output classes.
func (c *Classifier) NumClasses() int { return len(c.Weights) }

// NumFeatures returns the expected input vector length.
func (c *Classifier) NumFeatures() int {
	if len(c.Weights) == 0 {
		return 0
	}
	return len(c.Weights[0])
}

// PredictProba returns the per-class probability vector for one scaled
// feature vector.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	if len(x) != c.NumFeatures() {
		return nil, fmt.Errorf("classifier expects %d features, got %d", c.NumFeatures(), len(x))
	}

	logits := make([]float64, len(c.Weights))
	maxLogit := math.Inf(-1)
	for i, row := range c.Weights {
		z := c.Intercepts[i]
		for j, w := range row {
			z += w * x[j]
		}
		logits[i] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	// Softmax with max subtraction for numerical stability.
	var sum float64
	probs := make([]float64, len(logits))
	for i, z := range logits {
		p := math.Exp(z - maxLogit)
		probs[i] = p
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// Predict returns the index of the most probable class along with the full
// probability vector.
func (c *Classifier) Predict(x []float64) (int, []float64, error) {
	probs, err := c.PredictProba(x)
	if err != nil {
		return 0, nil, err
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best, probs, nil
}
