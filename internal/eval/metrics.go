// Package eval scores binary classifiers by ranking quality.
package eval

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDegenerate is returned when the labels do not contain both classes, or no
// rows at all, so a ranking metric is undefined.
var ErrDegenerate = errors.New("eval: metric undefined without both classes")

type point struct {
	score float64
	label float64
}

// thresholdGroups sorts by score descending and returns the cumulative
// (true positive, false positive) counts after each group of equal scores.
func thresholdGroups(scores, labels []float64) (tp, fp []float64, pos, neg float64, err error) {
	if len(scores) != len(labels) {
		return nil, nil, 0, 0, fmt.Errorf("eval: %d scores but %d labels", len(scores), len(labels))
	}
	pts := make([]point, len(scores))
	for i := range scores {
		pts[i] = point{score: scores[i], label: labels[i]}
		if labels[i] == 1 {
			pos++
		} else {
			neg++
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].score > pts[j].score })
	var ctp, cfp float64
	for i := 0; i < len(pts); {
		j := i
		for j < len(pts) && pts[j].score == pts[i].score {
			if pts[j].label == 1 {
				ctp++
			} else {
				cfp++
			}
			j++
		}
		tp = append(tp, ctp)
		fp = append(fp, cfp)
		i = j
	}
	return tp, fp, pos, neg, nil
}

// AreaUnderROC integrates the ROC curve with the trapezoidal rule. Tied
// scores form a single threshold so ties count as half-correct.
func AreaUnderROC(scores, labels []float64) (float64, error) {
	tp, fp, pos, neg, err := thresholdGroups(scores, labels)
	if err != nil {
		return 0, err
	}
	if pos == 0 || neg == 0 {
		return 0, ErrDegenerate
	}
	area := 0.0
	prevTPR, prevFPR := 0.0, 0.0
	for k := range tp {
		tpr := tp[k] / pos
		fpr := fp[k] / neg
		area += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevTPR, prevFPR = tpr, fpr
	}
	return clamp01(area), nil
}

// AreaUnderPR integrates the precision-recall curve with the trapezoidal rule,
// starting from recall 0 at the precision of the first threshold.
func AreaUnderPR(scores, labels []float64) (float64, error) {
	tp, fp, pos, _, err := thresholdGroups(scores, labels)
	if err != nil {
		return 0, err
	}
	if pos == 0 {
		return 0, ErrDegenerate
	}
	first := tp[0] / (tp[0] + fp[0])
	area := 0.0
	prevRecall, prevPrecision := 0.0, first
	for k := range tp {
		recall := tp[k] / pos
		precision := tp[k] / (tp[k] + fp[k])
		area += (recall - prevRecall) * (precision + prevPrecision) / 2
		prevRecall, prevPrecision = recall, precision
	}
	return clamp01(area), nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
