package main

import (
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/NicolasEhrhardt/NER/IO"
	"github.com/NicolasEhrhardt/NER/baseline"
	"github.com/NicolasEhrhardt/NER/gradcheck"
	"github.com/NicolasEhrhardt/NER/model"
	"github.com/NicolasEhrhardt/NER/params"
	"github.com/NicolasEhrhardt/NER/trainer"
	"github.com/NicolasEhrhardt/NER/window"
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	switch {
	case baselineFlag:
		err = runBaseline(cfg, logger)
	case gradcheckFlag:
		err = runGradCheck(cfg, logger)
	default:
		err = run(cfg, logger)
	}
	if err != nil {
		logger.Fatalf("%+v", err)
	}
}

func loadVocab(cfg params.TrainingConfig) (IO.Vocabulary, error) {
	saved := filepath.Join(cfg.ModelDir, IO.VocabFile)
	if loadFlag && fileExists(saved) {
		return IO.ImportVocabJSON(saved)
	}
	return IO.LoadVocabFile(cfg.VocabPath)
}

// loadParams returns the persisted model for -load, otherwise fresh weights
// on top of the pretrained vectors (or a random table if there are none).
// Shapes are checked against net either way.
func loadParams(cfg params.TrainingConfig, net *model.Network, rng *rand.Rand) (*model.Params, error) {
	var p *model.Params
	switch {
	case loadFlag:
		L, W, U, err := IO.LoadModel(cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		p = &model.Params{L: L, W: W, U: U}
	case cfg.VectorsPath != "" && fileExists(cfg.VectorsPath):
		L, err := IO.ReadWordVectorsFile(cfg.VectorsPath, net.Dims.NumWords, net.Dims.WordSize)
		if err != nil {
			return nil, err
		}
		p = model.InitWeights(net.Dims, L, rng)
	default:
		p = model.InitParams(net.Dims, rng)
	}
	return p, model.CheckShapes(net.Dims, p)
}

func readWindows(wd *window.Windower, path string) ([]window.Window, error) {
	if path == "" {
		return nil, nil
	}
	data, err := IO.ReadCorpusFile(path)
	if err != nil {
		return nil, err
	}
	return wd.All(data), nil
}

func run(cfg params.TrainingConfig, logger *log.Logger) error {
	vocab, err := loadVocab(cfg)
	if err != nil {
		return err
	}
	net, err := model.NewNetworkFromConfig(cfg, vocab)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	p, err := loadParams(cfg, net, rng)
	if err != nil {
		return err
	}
	if loadFlag {
		// saved weights are already rescaled for inference
		p.Compensate(1/cfg.KeepX, 1/cfg.KeepZ)
	}

	wd, err := window.New(cfg.WindowSize)
	if err != nil {
		return err
	}
	train, err := readWindows(wd, cfg.TrainPath)
	if err != nil {
		return err
	}
	dev, err := readWindows(wd, cfg.DevPath)
	if err != nil {
		return err
	}
	logger.Printf("vocab %d words, %d training windows, %d holdout windows", vocab.Size(), len(train), len(dev))

	tr := trainer.New(net, cfg, rng)
	tr.Logger = logger
	if cfg.LogPath != "" {
		if tr.Log, err = IO.CreateEpochLog(cfg.LogPath); err != nil {
			return err
		}
		defer tr.Log.Close()
	}
	res, err := tr.Train(p, train, dev)
	if err != nil {
		return err
	}
	logger.Printf("trained %d epochs, kept epoch %d (stopped early: %t)", res.Epochs, res.BestEpoch, res.Stopped)
	accuracyPlot(os.Stdout, res.Accuracies)

	if cfg.ModelDir != "" {
		if err := IO.SaveModel(cfg.ModelDir, p.L, p.W, p.U); err != nil {
			return err
		}
		if err := IO.ExportVocabJSON(filepath.Join(cfg.ModelDir, IO.VocabFile), vocab); err != nil {
			return err
		}
		logger.Printf("saved model to %s", cfg.ModelDir)
	}

	if cfg.TestPath == "" {
		return nil
	}
	test, err := readWindows(wd, cfg.TestPath)
	if err != nil {
		return err
	}
	logger.Printf("test accuracy %.4f over %d windows", net.Evaluate(p, test), len(test))
	return errors.Wrap(IO.WritePredictionsFile(cfg.OutputPath, net.Predictions(p, test)), "writing test predictions")
}

func runGradCheck(cfg params.TrainingConfig, logger *log.Logger) error {
	vocab, err := loadVocab(cfg)
	if err != nil {
		return err
	}
	net, err := model.NewNetworkFromConfig(cfg, vocab)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	c := gradcheck.New(net.Dims, rng)
	c.Epsilon = cfg.GradCheckEpsilon
	c.Trials = cfg.GradCheckTrials
	logger.Printf("gradient check, %d random trials: %s", c.Trials, c.Run())

	if cfg.TrainPath == "" {
		return nil
	}
	p, err := loadParams(cfg, net, rng)
	if err != nil {
		return err
	}
	wd, err := window.New(cfg.WindowSize)
	if err != nil {
		return err
	}
	train, err := readWindows(wd, cfg.TrainPath)
	if err != nil {
		return err
	}
	if len(train) == 0 {
		return nil
	}
	r, err := c.CheckWindow(net, p, train[0])
	if err != nil {
		return err
	}
	logger.Printf("gradient check on %q: %s", train[0].Center().Word, r)
	return nil
}

func runBaseline(cfg params.TrainingConfig, logger *log.Logger) error {
	data, err := IO.ReadCorpusFile(cfg.TrainPath)
	if err != nil {
		return err
	}
	m := baseline.Train(data)
	logger.Printf("baseline train accuracy %.4f", baseline.Accuracy(m.Predictions(data)))

	path := cfg.TestPath
	if path == "" {
		path = cfg.DevPath
	}
	if path == "" {
		return nil
	}
	eval, err := IO.ReadCorpusFile(path)
	if err != nil {
		return err
	}
	preds := m.Predictions(eval)
	logger.Printf("baseline accuracy on %s: %.4f", path, baseline.Accuracy(preds))
	return errors.Wrap(IO.WritePredictionsFile(cfg.OutputPath, preds), "writing baseline predictions")
}
