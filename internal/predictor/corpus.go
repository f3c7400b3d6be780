package predictor

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/patchsub/patchsubset/internal/patcherr"
)

// corpusFile is the on-disk TOML shape for a frequency predictor's
// slicing-strategy table. Counts are keyed by decimal codepoint since
// TOML table keys must be strings.
type corpusFile struct {
	Strategy []struct {
		Name   string `toml:"name"`
		Subset []struct {
			Name   string           `toml:"name"`
			Counts map[string]int64 `toml:"counts"`
		} `toml:"subset"`
	} `toml:"strategy"`
}

// LoadCorpus reads a TOML-encoded strategy table from path and builds
// the Strategies a Frequency predictor ranks candidates against.
func LoadCorpus(path string) ([]*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, patcherr.Wrap(patcherr.NotFound, "predictor corpus: read", err)
	}

	var file corpusFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, patcherr.Wrap(patcherr.InvalidArgument, "predictor corpus: parse toml", err)
	}

	strategies := make([]*Strategy, 0, len(file.Strategy))
	for _, s := range file.Strategy {
		strategy := &Strategy{Name: s.Name}
		for _, sub := range s.Subset {
			counts := make(map[rune]uint64, len(sub.Counts))
			for key, count := range sub.Counts {
				cp, err := strconv.ParseInt(key, 10, 32)
				if err != nil {
					return nil, patcherr.Wrap(patcherr.InvalidArgument, "predictor corpus: codepoint key", err)
				}
				if count < 0 {
					return nil, patcherr.New(patcherr.InvalidArgument, "predictor corpus: negative count")
				}
				counts[rune(cp)] = uint64(count)
			}
			strategy.Subsets = append(strategy.Subsets, &Subset{Name: sub.Name, Counts: counts})
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}
