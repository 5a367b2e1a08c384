package config

import (
	"os"
	"strconv"
)

// Config holds all topicnet configuration.
type Config struct {
	Data  DataConfig
	Model ModelConfig
	Train TrainConfig
}

// DataConfig holds input and artifact paths.
type DataConfig struct {
	TopicsPath      string
	AssignmentsPath string
	AbstractsDir    string
	EmbeddingsPath  string
	CheckpointPath  string
	LossLogPath     string
	StatesPath      string
}

// ModelConfig holds network hyperparameters.
type ModelConfig struct {
	NumClasses int
	EmbedSize  int
	MaxLength  int
	HiddenSize int
	KeepProb   float64 // probability of keeping a hidden unit under dropout
}

// TrainConfig holds training loop settings.
type TrainConfig struct {
	NumEpochs    int
	BatchSize    int
	LearningRate float64
	TrainRatio   float64
	Seed         int64
	LogLevel     string
}

// Load reads configuration from environment variables with the experiment's
// default hyperparameters.
func Load() Config {
	return Config{
		Data: DataConfig{
			TopicsPath:      getenv("TOPICNET_TOPICS", "lda_topics_final"),
			AssignmentsPath: getenv("TOPICNET_ASSIGNMENTS", "lda_assignments_final"),
			AbstractsDir:    getenv("TOPICNET_ABSTRACTS_DIR", "data/abstracts_tokenized"),
			EmbeddingsPath:  getenv("TOPICNET_EMBEDDINGS", "glove/embeddings.txt"),
			CheckpointPath:  getenv("TOPICNET_CHECKPOINT", "weights/model.gob"),
			LossLogPath:     getenv("TOPICNET_LOSS_LOG", "training_loss"),
			StatesPath:      getenv("TOPICNET_STATES", "hidden_states"),
		},
		Model: ModelConfig{
			NumClasses: getenvInt("TOPICNET_NUM_CLASSES", 10),
			EmbedSize:  getenvInt("TOPICNET_EMBED_SIZE", 200),
			MaxLength:  getenvInt("TOPICNET_MAX_LENGTH", 200),
			HiddenSize: getenvInt("TOPICNET_HIDDEN_SIZE", 300),
			KeepProb:   getenvFloat("TOPICNET_KEEP_PROB", 0.5),
		},
		Train: TrainConfig{
			NumEpochs:    getenvInt("TOPICNET_NUM_EPOCHS", 20),
			BatchSize:    getenvInt("TOPICNET_BATCH_SIZE", 128),
			LearningRate: getenvFloat("TOPICNET_LEARNING_RATE", 0.001),
			TrainRatio:   getenvFloat("TOPICNET_TRAIN_RATIO", 0.99),
			Seed:         int64(getenvInt("TOPICNET_SEED", 0)),
			LogLevel:     getenv("TOPICNET_LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
