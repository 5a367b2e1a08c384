// Package train runs the minibatch training loop over the LSTM classifier.
package train

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/crimson-sun/topicnet/internal/corpus"
	"github.com/crimson-sun/topicnet/internal/model"
	"github.com/crimson-sun/topicnet/internal/output"
)

// Trainer owns the optimizer state for the lifetime of a training run and
// overwrites a single checkpoint slot as it goes.
type Trainer struct {
	clf            *model.Classifier
	opt            *model.Adam
	rng            *rand.Rand
	batchSize      int
	numEpochs      int
	checkpointPath string
}

// New creates a trainer with fresh Adam moment buffers.
func New(clf *model.Classifier, learningRate float64, batchSize, numEpochs int, checkpointPath string, rng *rand.Rand) *Trainer {
	return &Trainer{
		clf:            clf,
		opt:            model.NewAdam(clf.Parameters(), learningRate),
		rng:            rng,
		batchSize:      batchSize,
		numEpochs:      numEpochs,
		checkpointPath: checkpointPath,
	}
}

// Run trains over the set for the configured number of epochs. Minibatches
// are reshuffled every epoch; each batch does one forward-backward-update
// step and overwrites the checkpoint. After each epoch the batch losses are
// appended to the loss log as one line.
func (t *Trainer) Run(set *corpus.Set, lossLog *output.LossLog) error {
	if set.Len() == 0 {
		return fmt.Errorf("train: empty training set")
	}

	for epoch := 1; epoch <= t.numEpochs; epoch++ {
		slog.Info("training epoch", "epoch", epoch, "total", t.numEpochs)

		batches := corpus.Minibatches(set, t.batchSize, true, t.rng)
		losses := make([]float64, 0, len(batches))

		for i, batch := range batches {
			loss, err := t.trainOnBatch(batch)
			if err != nil {
				return fmt.Errorf("train: epoch %d batch %d: %w", epoch, i+1, err)
			}
			losses = append(losses, loss)

			if err := model.SaveCheckpoint(t.clf, t.checkpointPath); err != nil {
				return fmt.Errorf("train: epoch %d batch %d: %w", epoch, i+1, err)
			}
			slog.Debug("batch done", "batch", i+1, "total", len(batches), "loss", loss)
		}

		if lossLog != nil {
			if err := lossLog.Append(losses); err != nil {
				return fmt.Errorf("train: epoch %d: %w", epoch, err)
			}
		}
		slog.Info("epoch complete", "epoch", epoch, "mean_loss", mean(losses))
	}
	return nil
}

// trainOnBatch performs one forward-backward-update step.
func (t *Trainer) trainOnBatch(batch corpus.Batch) (float64, error) {
	t.opt.ZeroGrad()

	logits, _, err := t.clf.Forward(batch.Docs, batch.Lengths, true)
	if err != nil {
		return 0, err
	}
	loss, grad, err := model.SoftmaxCrossEntropy(logits, batch.Labels)
	if err != nil {
		return 0, err
	}
	if err := t.clf.Backward(grad); err != nil {
		return 0, err
	}
	t.opt.Step()
	return loss, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
