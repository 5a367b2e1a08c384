package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SoftmaxCrossEntropy computes the mean cross-entropy loss over a batch of
// logits against integer class labels, and the gradient of that loss with
// respect to the logits. The gradient for row i is (softmax(logits_i) -
// onehot(label_i)) / batch.
func SoftmaxCrossEntropy(logits *mat.Dense, labels []int) (float64, *mat.Dense, error) {
	batch, classes := logits.Dims()
	if len(labels) != batch {
		return 0, nil, fmt.Errorf("model: %d labels for %d logit rows", len(labels), batch)
	}

	loss := 0.0
	grad := mat.NewDense(batch, classes, nil)
	inv := 1.0 / float64(batch)

	for i := 0; i < batch; i++ {
		label := labels[i]
		if label < 0 || label >= classes {
			return 0, nil, fmt.Errorf("model: label %d out of range [0,%d)", label, classes)
		}

		// Softmax with max subtraction for stability.
		maxLogit := logits.At(i, 0)
		for j := 1; j < classes; j++ {
			if v := logits.At(i, j); v > maxLogit {
				maxLogit = v
			}
		}
		sumExp := 0.0
		for j := 0; j < classes; j++ {
			sumExp += math.Exp(logits.At(i, j) - maxLogit)
		}
		logSumExp := maxLogit + math.Log(sumExp)

		loss += logSumExp - logits.At(i, label)

		for j := 0; j < classes; j++ {
			p := math.Exp(logits.At(i, j)-maxLogit) / sumExp
			if j == label {
				p -= 1.0
			}
			grad.Set(i, j, p*inv)
		}
	}

	return loss * inv, grad, nil
}

// Argmax returns the predicted class per logit row.
func Argmax(logits *mat.Dense) []int {
	batch, classes := logits.Dims()
	out := make([]int, batch)
	for i := 0; i < batch; i++ {
		best := 0
		for j := 1; j < classes; j++ {
			if logits.At(i, j) > logits.At(i, best) {
				best = j
			}
		}
		out[i] = best
	}
	return out
}
