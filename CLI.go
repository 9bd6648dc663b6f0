package main

import (
	"flag"
	"os"

	"github.com/NicolasEhrhardt/NER/params"
)

var (
	configPath  string
	trainPath   string
	devPath     string
	testPath    string
	vocabPath   string
	vectorsPath string
	modelDir    string
	outPath     string
	logPath     string
	seed        uint64

	gradcheckFlag bool
	baselineFlag  bool
	loadFlag      bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "JSON training config; unset keys keep their defaults")
	flag.StringVar(&trainPath, "train", "", "Training corpus (word label per line)")
	flag.StringVar(&devPath, "dev", "", "Holdout corpus used for early stopping")
	flag.StringVar(&testPath, "test", "", "Corpus to tag after training")
	flag.StringVar(&vocabPath, "vocab", "", "Vocabulary file, one word per line")
	flag.StringVar(&vectorsPath, "vectors", "", "Pretrained word vectors aligned with -vocab")
	flag.StringVar(&modelDir, "model", "", "Directory for L.csv, W.csv, U.csv and vocab.json")
	flag.StringVar(&outPath, "out", "", "Prediction output file")
	flag.StringVar(&logPath, "log", "", "Per-epoch CSV log")
	flag.Uint64Var(&seed, "seed", 0, "Random seed")

	flag.BoolVar(&gradcheckFlag, "gradcheck", false, "Run the gradient check and exit")
	flag.BoolVar(&baselineFlag, "baseline", false, "Tag with the per-word baseline instead of the network")
	flag.BoolVar(&loadFlag, "load", false, "Start from the model saved in -model")
}

// loadConfig reads -config (or the defaults) and applies every flag that was
// set on the command line on top.
func loadConfig() (params.TrainingConfig, error) {
	cfg := params.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = params.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "train":
			cfg.TrainPath = trainPath
		case "dev":
			cfg.DevPath = devPath
		case "test":
			cfg.TestPath = testPath
		case "vocab":
			cfg.VocabPath = vocabPath
		case "vectors":
			cfg.VectorsPath = vectorsPath
		case "model":
			cfg.ModelDir = modelDir
		case "out":
			cfg.OutputPath = outPath
		case "log":
			cfg.LogPath = logPath
		case "seed":
			cfg.Seed = seed
		}
	})
	return cfg, cfg.Validate()
}

// fileExists true if path exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
