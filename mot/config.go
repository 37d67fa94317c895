package mot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Config holds the tracker parameters. They are fixed for a tracker's lifetime.
type Config struct {
	// Frames a track may stay unmatched before it is removed
	MaxAge int `json:"max_age"`
	// Matches required before a track is reported
	MinHits int `json:"min_hits"`
	// Minimum IoU (exclusive) to accept a detection-to-track match
	IoUThreshold float64 `json:"iou_threshold"`
	// Motion model for new tracks. Default is "sort"
	MotionModel MotionModelKind `json:"motion_model"`
	// Number of box estimates kept per track
	MaxHistory int `json:"max_history"`
	// Log track spawns and removals
	Verbose bool `json:"verbose"`
}

// DefaultConfig returns the classic SORT parameters: max age 1, min hits 3,
// IoU threshold 0.3.
func DefaultConfig() Config {
	return Config{
		MaxAge:       1,
		MinHits:      3,
		IoUThreshold: 0.3,
		MotionModel:  MotionModelSORT,
		MaxHistory:   30,
	}
}

// Validate checks parameter ranges.
func (cfg Config) Validate() error {
	if cfg.MaxAge < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max_age must be >= 1, got %d", cfg.MaxAge)
	}
	if cfg.MinHits < 1 {
		return errors.Wrapf(ErrInvalidConfig, "min_hits must be >= 1, got %d", cfg.MinHits)
	}
	// Negated comparisons also reject NaN
	if !(cfg.IoUThreshold >= 0 && cfg.IoUThreshold < 1) {
		return errors.Wrapf(ErrInvalidConfig, "iou_threshold must be in [0, 1), got %v", cfg.IoUThreshold)
	}
	if !cfg.MotionModel.valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown motion_model %q", cfg.MotionModel)
	}
	if cfg.MaxHistory < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_history must be >= 0, got %d", cfg.MaxHistory)
	}
	return nil
}

// maxConfigFileSize bounds LoadConfig reads.
const maxConfigFileSize = 1 * 1024 * 1024

// LoadConfig reads a JSON config file. Fields omitted from the file keep
// their DefaultConfig values. The result is validated.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, errors.Wrap(err, "can't stat config file")
	}
	if fileInfo.Size() > maxConfigFileSize {
		return Config{}, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, errors.Wrap(err, "can't read config file")
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "can't parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
