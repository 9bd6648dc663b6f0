package params

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Sentinel tokens shared by the corpus reader, the vocabulary and the windower.
const (
	StartToken   = "<s>"
	EndToken     = "</s>"
	UnkToken     = "UUUNKKK"
	DocStart     = "-DOCSTART-"
	OutsideLabel = "O"
)

// ErrEvenWindow is returned for window sizes that have no center token.
var ErrEvenWindow = errors.New("window size must be a positive odd integer")

// DefaultLabels is the CoNLL label set used by the reference data.
var DefaultLabels = []string{"O", "ORG", "PER", "LOC", "MISC"}

type TrainingConfig struct {
	// Network shape
	WindowSize int `json:"window_size"` // odd, center token is the one tagged
	WordSize   int `json:"word_size"`   // embedding dimension d
	HiddenSize int `json:"hidden_size"`

	// Optimization
	MaxEpochs int     `json:"max_epochs"`
	LrU       float64 `json:"lr_u"`
	LrW       float64 `json:"lr_w"`
	LrL       float64 `json:"lr_l"`
	Tau       float64 `json:"tau"`    // lr = lr0 / (1 + epoch/tau)
	Lambda    float64 `json:"lambda"` // L2 weight decay on U and W

	// Dropout keep probabilities, 1 disables
	KeepX float64 `json:"keep_x"`
	KeepZ float64 `json:"keep_z"`

	Labels []string `json:"labels"`
	Seed   uint64   `json:"seed"`

	GradCheckTrials  int     `json:"gradcheck_trials"`
	GradCheckEpsilon float64 `json:"gradcheck_epsilon"`

	// Data
	TrainPath   string `json:"train_path"`
	DevPath     string `json:"dev_path"`
	TestPath    string `json:"test_path"`
	VocabPath   string `json:"vocab_path"`
	VectorsPath string `json:"vectors_path"`
	ModelDir    string `json:"model_dir"`
	OutputPath  string `json:"output_path"`
	LogPath     string `json:"log_path"` // per-epoch CSV, empty disables
}

// DefaultConfig returns the settings used for the CoNLL experiments.
func DefaultConfig() TrainingConfig {
	return TrainingConfig{
		WindowSize: 3,
		WordSize:   50,
		HiddenSize: 100,

		MaxEpochs: 20,
		LrU:       0.001,
		LrW:       0.001,
		LrL:       0.001,
		Tau:       10,
		Lambda:    1e-4,

		KeepX: 1.0,
		KeepZ: 1.0,

		Labels: append([]string(nil), DefaultLabels...),
		Seed:   1,

		GradCheckTrials:  10,
		GradCheckEpsilon: 1e-5,

		TrainPath:   "data/train",
		DevPath:     "data/dev",
		VocabPath:   "data/vocab.txt",
		VectorsPath: "data/wordVectors.txt",
		ModelDir:    "models",
		OutputPath:  "predictions.out",
		LogPath:     "training_log.csv",
	}
}

// LoadConfig reads a JSON file on top of DefaultConfig; absent keys keep
// their default value.
func LoadConfig(path string) (TrainingConfig, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "opening config %s", path)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decoding config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c TrainingConfig) Validate() error {
	if c.WindowSize < 1 || c.WindowSize%2 == 0 {
		return errors.Wrapf(ErrEvenWindow, "got %d", c.WindowSize)
	}
	if c.WordSize < 1 || c.HiddenSize < 1 {
		return errors.Errorf("word size and hidden size must be positive (got %d, %d)", c.WordSize, c.HiddenSize)
	}
	if c.MaxEpochs < 0 {
		return errors.Errorf("max epochs must not be negative (got %d)", c.MaxEpochs)
	}
	if c.LrU < 0 || c.LrW < 0 || c.LrL < 0 {
		return errors.Errorf("learning rates must not be negative (got %g, %g, %g)", c.LrU, c.LrW, c.LrL)
	}
	if c.Tau <= 0 {
		return errors.Errorf("tau must be positive (got %g)", c.Tau)
	}
	if c.Lambda < 0 {
		return errors.Errorf("lambda must not be negative (got %g)", c.Lambda)
	}
	if c.KeepX <= 0 || c.KeepX > 1 || c.KeepZ <= 0 || c.KeepZ > 1 {
		return errors.Errorf("keep probabilities must be in (0, 1] (got %g, %g)", c.KeepX, c.KeepZ)
	}
	if len(c.Labels) == 0 {
		return errors.New("label set is empty")
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if seen[l] {
			return errors.Errorf("label %q listed twice", l)
		}
		seen[l] = true
	}
	return nil
}
