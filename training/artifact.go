package training

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ezoic/wattwise/core/model"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/sklearn/lightgbm"
)

// DefaultModelPath is the well-known location of the model artifact.
const DefaultModelPath = "models/solar_prediction_model.gob"

// SaveModel writes m to path, creating the parent directory and replacing
// any previous artifact. There is no versioning: the last save wins.
func SaveModel(m *lightgbm.LGBMRegressor, path string) error {
	if m == nil || !m.IsFitted() {
		return wwErrors.NewNotFittedError("LGBMRegressor", "SaveModel")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wwErrors.Wrapf(err, "failed to create model directory %s", dir)
		}
	}
	if err := model.SaveModel(m, path); err != nil {
		return err
	}
	log.GetLoggerWithName("training").Info("Model saved",
		log.OperationKey, log.OperationSave,
		log.PathKey, path,
	)
	return nil
}

// LoadModel reads the artifact at path.
func LoadModel(path string) (*lightgbm.LGBMRegressor, error) {
	start := time.Now()
	m := &lightgbm.LGBMRegressor{}
	if err := model.LoadModel(m, path); err != nil {
		return nil, err
	}
	if !m.IsFitted() {
		return nil, wwErrors.WithHint(
			wwErrors.NewNotFittedError("LGBMRegressor", "LoadModel"),
			"run `wattwise train` to produce a fitted model",
		)
	}
	log.GetLoggerWithName("training").Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}
