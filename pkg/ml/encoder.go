package ml

import "fmt"

// LabelEncoder maps class indices back to the label names used at training
// time. Classes keeps the encoder's original ordering, which also fixes the
// ordering of probability distributions.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// NumClasses returns the size of the trained label set.
func (e *LabelEncoder) NumClasses() int { return len(e.Classes) }

// Decode returns the label name for a class index.
func (e *LabelEncoder) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", idx, len(e.Classes))
	}
	return e.Classes[idx], nil
}
