// Package infer runs a trained classifier in evaluation mode: topic
// prediction with accuracy against the LDA assignments, and extraction of
// the final hidden-state vectors for export.
package infer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/topicnet/internal/corpus"
	"github.com/crimson-sun/topicnet/internal/model"
)

// Predict returns the predicted topic per document, computed batch-wise in
// set order with dropout disabled.
func Predict(clf *model.Classifier, set *corpus.Set, batchSize int) ([]int, error) {
	preds := make([]int, 0, set.Len())
	for _, batch := range corpus.Minibatches(set, batchSize, false, nil) {
		logits, _, err := clf.Forward(batch.Docs, batch.Lengths, false)
		if err != nil {
			return nil, fmt.Errorf("infer: %w", err)
		}
		preds = append(preds, model.Argmax(logits)...)
	}
	return preds, nil
}

// Accuracy is the fraction of predictions matching the ground-truth labels.
func Accuracy(predictions, labels []int) (float64, error) {
	if len(predictions) != len(labels) {
		return 0, fmt.Errorf("infer: %d predictions for %d labels", len(predictions), len(labels))
	}
	if len(labels) == 0 {
		return 0, fmt.Errorf("infer: no documents")
	}
	correct := 0
	for i := range predictions {
		if predictions[i] == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// HiddenStates computes the final hidden-state vector for every document,
// batch-wise so memory stays bounded, preserving set order. The result is
// [numDocs x hiddenSize].
func HiddenStates(clf *model.Classifier, set *corpus.Set, batchSize int) (*mat.Dense, error) {
	if set.Len() == 0 {
		return nil, fmt.Errorf("infer: no documents")
	}
	states := mat.NewDense(set.Len(), clf.HiddenSize, nil)

	row := 0
	for _, batch := range corpus.Minibatches(set, batchSize, false, nil) {
		_, hidden, err := clf.Forward(batch.Docs, batch.Lengths, false)
		if err != nil {
			return nil, fmt.Errorf("infer: %w", err)
		}
		n, _ := hidden.Dims()
		for i := 0; i < n; i++ {
			states.SetRow(row, hidden.RawRowView(i))
			row++
		}
	}
	return states, nil
}
