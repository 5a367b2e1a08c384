package main

import (
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"time"

	"github.com/crimson-sun/topicnet/internal/config"
	"github.com/crimson-sun/topicnet/internal/corpus"
	"github.com/crimson-sun/topicnet/internal/embedding"
	"github.com/crimson-sun/topicnet/internal/infer"
	"github.com/crimson-sun/topicnet/internal/logging"
	"github.com/crimson-sun/topicnet/internal/model"
	"github.com/crimson-sun/topicnet/internal/output"
	"github.com/crimson-sun/topicnet/internal/train"
)

func main() {
	start := time.Now()
	cfg := config.Load()

	topicsPath := flag.String("lda-topics", cfg.Data.TopicsPath, "LDA topics file")
	assignmentsPath := flag.String("lda-assignments", cfg.Data.AssignmentsPath, "LDA assignments file")
	abstractsDir := flag.String("abs-dir", cfg.Data.AbstractsDir, "directory of tokenized abstracts")
	embeddingsPath := flag.String("embeddings", cfg.Data.EmbeddingsPath, "pretrained word embeddings file")
	maxLength := flag.Int("max-length", cfg.Model.MaxLength, "maximum abstract length")
	maxVocab := flag.Int("max-vocab", 0, "cap on pretrained vocabulary size (0 = no cap)")
	rawAbstracts := flag.Bool("raw-abstracts", false, "abstracts are raw text, tokenize them on load")
	seed := flag.Int64("seed", cfg.Train.Seed, "random seed (0 = time-based)")
	doTrain := flag.Bool("train", false, "train on the training split")
	doTrainAll := flag.Bool("train-all", false, "train on the full dataset")
	doEval := flag.Bool("eval", false, "report prediction accuracy")
	doStates := flag.Bool("export-states", false, "export final hidden-state vectors")
	flag.Parse()

	logging.Init(logging.ParseLevel(cfg.Train.LogLevel))

	if *doTrain && *doTrainAll {
		log.Fatal("at most one of --train and --train-all may be set")
	}
	training := *doTrain || *doTrainAll
	if !training && !*doEval && !*doStates {
		log.Fatal("must specify --train or --train-all (or --eval / --export-states against an existing checkpoint)")
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	// Load and preprocess the corpus.
	topics, err := corpus.LoadTopics(*topicsPath)
	if err != nil {
		log.Fatalf("failed to load topics: %v", err)
	}
	labels, err := corpus.LoadAssignments(*assignmentsPath)
	if err != nil {
		log.Fatalf("failed to load assignments: %v", err)
	}
	_, docs, err := corpus.LoadAbstracts(*abstractsDir, *rawAbstracts)
	if err != nil {
		log.Fatalf("failed to load abstracts: %v", err)
	}

	numClasses := len(topics)
	if numClasses != cfg.Model.NumClasses {
		slog.Warn("topic count differs from configured class count, using topic file",
			"topics", numClasses, "configured", cfg.Model.NumClasses)
	}
	if err := corpus.Validate(labels, len(docs), numClasses); err != nil {
		log.Fatalf("corpus validation failed: %v", err)
	}

	vocab, table, err := embedding.Load(*embeddingsPath, *maxVocab)
	if err != nil {
		log.Fatalf("failed to load embeddings: %v", err)
	}
	if table.Dim != cfg.Model.EmbedSize {
		log.Fatalf("embeddings file has dimension %d, configured embed size is %d",
			table.Dim, cfg.Model.EmbedSize)
	}
	slog.Info("corpus loaded",
		"documents", len(docs), "topics", numClasses,
		"vocab", vocab.Size(), "embed_dim", table.Dim)

	ids, lengths := embedding.VectorizeAndPad(docs, vocab, *maxLength)
	full := &corpus.Set{Docs: ids, Lengths: lengths, Labels: labels}

	clf, err := model.New(table, cfg.Model.HiddenSize, numClasses, cfg.Model.KeepProb, rng)
	if err != nil {
		log.Fatalf("failed to build classifier: %v", err)
	}

	// Training phase.
	evalSet := full
	if training {
		trainSet := full
		if *doTrain {
			var valSet *corpus.Set
			trainSet, valSet = corpus.Split(full, cfg.Train.TrainRatio, rng)
			evalSet = valSet
			slog.Info("split corpus", "train", trainSet.Len(), "validation", valSet.Len())
		}

		lossLog, err := output.NewLossLog(cfg.Data.LossLogPath)
		if err != nil {
			log.Fatalf("failed to open loss log: %v", err)
		}
		trainer := train.New(clf, cfg.Train.LearningRate, cfg.Train.BatchSize,
			cfg.Train.NumEpochs, cfg.Data.CheckpointPath, rng)
		if err := trainer.Run(trainSet, lossLog); err != nil {
			lossLog.Close()
			log.Fatalf("training failed: %v", err)
		}
		if err := lossLog.Close(); err != nil {
			log.Fatalf("failed to close loss log: %v", err)
		}
	} else {
		if err := model.LoadCheckpoint(clf, cfg.Data.CheckpointPath); err != nil {
			log.Fatalf("failed to restore checkpoint: %v", err)
		}
	}

	// Evaluation phase.
	if *doEval {
		preds, err := infer.Predict(clf, evalSet, cfg.Train.BatchSize)
		if err != nil {
			log.Fatalf("prediction failed: %v", err)
		}
		acc, err := infer.Accuracy(preds, evalSet.Labels)
		if err != nil {
			log.Fatalf("accuracy computation failed: %v", err)
		}
		slog.Info("evaluation complete", "documents", evalSet.Len(), "accuracy", acc)
	}

	// Hidden-state export runs over the full dataset in load order.
	if *doStates {
		states, err := infer.HiddenStates(clf, full, cfg.Train.BatchSize)
		if err != nil {
			log.Fatalf("hidden-state extraction failed: %v", err)
		}
		if err := output.WriteStates(cfg.Data.StatesPath, states); err != nil {
			log.Fatalf("failed to write hidden states: %v", err)
		}
		slog.Info("hidden states written", "path", cfg.Data.StatesPath, "documents", full.Len())
	}

	slog.Info("run complete", "duration", time.Since(start).Round(time.Millisecond))
}
