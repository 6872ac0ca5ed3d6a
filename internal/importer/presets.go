package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/repeatio/examweb/internal/store"
)

// LoadPresets imports every supported bank file in dir, but only into an
// empty store so presets never duplicate banks the user already has. It
// returns how many banks were saved. A file that fails to parse is logged
// and reported without stopping the rest.
func LoadPresets(ctx context.Context, im *Importer, banks store.BankRepo, dir string) (int, error) {
	existing, err := banks.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		im.logger.Info("banks already present, presets skipped", "count", existing)
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read presets dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		loaded int
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		res, err := im.ImportFile(path)
		if err != nil {
			im.logger.Warn("preset skipped", "file", path, "err", err)
			errs = append(errs, err)
			continue
		}
		if err := banks.Save(ctx, res.Bank); err != nil {
			return loaded, err
		}
		im.logger.Info("preset loaded", "bank", res.Bank.Name, "questions", len(res.Bank.Questions))
		loaded++
	}
	return loaded, errors.Join(errs...)
}
