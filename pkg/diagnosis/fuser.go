package diagnosis

import (
	"sort"

	"autocare/pkg/ml"
	"autocare/pkg/rules"
)

// ConfidenceThreshold is the minimum classifier confidence (inclusive) for
// folding the predicted label into the alert set.
const ConfidenceThreshold = 50.0

// noIssueLabels are predicted labels that mean "nothing wrong" and are never
// added to the alert set.
var noIssueLabels = map[string]bool{
	"None":   true,
	"Normal": true,
}

// Fuse combines the rule alerts with the classifier prediction. The predicted
// label joins the alert set only when it names a real issue and the classifier
// is at least ConfidenceThreshold sure; the verdict's confidence is the
// classifier's raw confidence either way. Duplicate labels collapse, and the
// result is sorted so identical inputs always produce identical verdicts.
func Fuse(ruleAlerts []rules.Alert, pred ml.PredictionResult) Verdict {
	set := make(map[string]bool, len(ruleAlerts)+1)
	for _, a := range ruleAlerts {
		set[string(a)] = true
	}

	if !pred.Unavailable && !noIssueLabels[pred.Label] && pred.Confidence >= ConfidenceThreshold {
		set[pred.Label] = true
	}

	alerts := make([]string, 0, len(set))
	for a := range set {
		alerts = append(alerts, a)
	}
	sort.Strings(alerts)

	return Verdict{
		Alerts:     alerts,
		Confidence: pred.Confidence,
		Normal:     len(alerts) == 0,
		Prediction: pred,
	}
}
