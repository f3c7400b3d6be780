package server

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patchsub/patchsubset/internal/patcherr"
	"github.com/patchsub/patchsubset/internal/predictor"
)

// Config is the on-disk YAML shape for `patchsubset serve` (spec §10
// Ambient Stack): listen address, font directory, and predictor
// settings.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	FontDir    string `yaml:"font_dir"`
	// UseSystemFonts serves whatever fonts are installed on the host
	// (font.NewSystemProvider) instead of a curated FontDir.
	UseSystemFonts bool            `yaml:"use_system_fonts"`
	UseRemapping   bool            `yaml:"use_remapping"`
	Predictor      PredictorConfig `yaml:"predictor"`
}

// PredictorConfig selects and configures the CodepointPredictor.
type PredictorConfig struct {
	// Kind is "noop" or "frequency".
	Kind       string  `yaml:"kind"`
	CorpusPath string  `yaml:"corpus_path"`
	MinFreq    float64 `yaml:"min_freq"`
}

// LoadConfig reads and parses a YAML server config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.NotFound, "server config: read", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, patcherr.Wrap(patcherr.InvalidArgument, "server config: parse yaml", err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return &cfg, nil
}

// BuildPredictor constructs the Predictor described by cfg.
func (c *PredictorConfig) BuildPredictor() (predictor.Predictor, error) {
	switch c.Kind {
	case "", "noop":
		return predictor.Noop{}, nil
	case "frequency":
		strategies, err := predictor.LoadCorpus(c.CorpusPath)
		if err != nil {
			return nil, err
		}
		minFreq := c.MinFreq
		if minFreq == 0 {
			minFreq = 0.1
		}
		return &predictor.Frequency{Strategies: strategies, MinFreq: minFreq}, nil
	default:
		return nil, patcherr.New(patcherr.InvalidArgument, "server config: unknown predictor kind: "+c.Kind)
	}
}
