package checks

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RequiredFolders lists the folders that must exist below the media root.
var RequiredFolders = []string{
	"product", "product/cache",
}

// CheckMedia returns the required folders missing below root.
func CheckMedia(fs afero.Fs, root string) ([]string, error) {
	ok, err := afero.DirExists(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to check media root: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("media root %s does not exist", root)
	}

	var missing []string
	for _, folder := range RequiredFolders {
		exists, err := afero.DirExists(fs, filepath.Join(root, folder))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", folder, err)
		}
		if !exists {
			missing = append(missing, folder)
		}
	}
	return missing, nil
}

// FixMedia creates the missing folders.
func FixMedia(fs afero.Fs, root string, logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		if err := fs.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}
