package analytics

import "github.com/Veraticus/tally/internal/model"

// EvaluationWindow is the default number of recent sales the heuristic looks at.
const EvaluationWindow = 200

// ConfusionCounts tallies predicted against actual labels.
type ConfusionCounts struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// Total returns the number of scored pairs.
func (c ConfusionCounts) Total() int {
	return c.TruePositive + c.TrueNegative + c.FalsePositive + c.FalseNegative
}

// Accuracy is (TP+TN)/total.
func (c ConfusionCounts) Accuracy() float64 {
	return ratio(float64(c.TruePositive+c.TrueNegative), float64(c.Total()))
}

// Precision is TP/(TP+FP).
func (c ConfusionCounts) Precision() float64 {
	return ratio(float64(c.TruePositive), float64(c.TruePositive+c.FalsePositive))
}

// Recall is TP/(TP+FN).
func (c ConfusionCounts) Recall() float64 {
	return ratio(float64(c.TruePositive), float64(c.TruePositive+c.FalseNegative))
}

// F1 is the harmonic mean of precision and recall.
func (c ConfusionCounts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	return ratio(2*p*r, p+r)
}

// Evaluation is a confusion matrix with its derived metrics.
type Evaluation struct {
	Counts      ConfusionCounts `json:"counts"`
	Accuracy    float64         `json:"accuracy"`
	Precision   float64         `json:"precision"`
	Recall      float64         `json:"recall"`
	F1          float64         `json:"f1"`
	MeanRevenue float64         `json:"mean_revenue"`
	SampleSize  int             `json:"sample_size"`
}

// EvaluateHeuristic scores a naive "above average means rising" classifier
// against the sales themselves.
//
// recent must be ordered newest first. For each position i >= 1, current is
// recent[i] and previous is recent[i-1]. The actual label is 1 when current
// revenue exceeds previous revenue; the predicted label is 1 when current
// revenue exceeds the window mean. Only the first EvaluationWindow sales are
// used. Fewer than two sales score all zeros.
func EvaluateHeuristic(recent []model.Sale) Evaluation {
	return EvaluateHeuristicWindow(recent, EvaluationWindow)
}

// EvaluateHeuristicWindow is EvaluateHeuristic over the first window sales.
// A non-positive window means EvaluationWindow.
func EvaluateHeuristicWindow(recent []model.Sale, window int) Evaluation {
	if window <= 0 {
		window = EvaluationWindow
	}
	if len(recent) > window {
		recent = recent[:window]
	}
	if len(recent) < 2 {
		return Evaluation{SampleSize: len(recent)}
	}

	revenues := Revenues(recent)
	avg := mean(revenues)

	var c ConfusionCounts
	for i := 1; i < len(revenues); i++ {
		current, previous := revenues[i], revenues[i-1]
		actual := current > previous
		predicted := current > avg

		switch {
		case predicted && actual:
			c.TruePositive++
		case predicted && !actual:
			c.FalsePositive++
		case !predicted && actual:
			c.FalseNegative++
		default:
			c.TrueNegative++
		}
	}

	return Evaluation{
		Counts:      c,
		Accuracy:    c.Accuracy(),
		Precision:   c.Precision(),
		Recall:      c.Recall(),
		F1:          c.F1(),
		MeanRevenue: avg,
		SampleSize:  len(recent),
	}
}
