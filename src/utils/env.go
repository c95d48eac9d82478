package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DEV_ENV_FILENAME = ".env.development"
const PROD_ENV_FILENAME = ".env.production"

var MissingEnvErr = fmt.Errorf("environment variable not set")

// ProjectEnvDir is $PROJECTS_DIR/options-analytics, or the working
// directory when PROJECTS_DIR is unset.
func ProjectEnvDir() string {
	projectsDir := os.Getenv("PROJECTS_DIR")
	if projectsDir == "" {
		return "."
	}

	return filepath.Join(projectsDir, "options-analytics")
}

// InitEnvironmentVariables loads the .env file for GO_ENV from envDir.
// Variables already present in the environment win. A missing file is not
// an error since every setting also has a flag.
func InitEnvironmentVariables(envDir string) error {
	if os.Getenv("ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	envFile := filepath.Join(envDir, DEV_ENV_FILENAME)
	if os.Getenv("GO_ENV") == "production" {
		envFile = filepath.Join(envDir, PROD_ENV_FILENAME)
	}

	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no env file at %s", envFile)
			return nil
		}

		return fmt.Errorf("failed to load %s file: %w", envFile, err)
	}

	log.Debugf("loaded env file %s", envFile)
	return nil
}

func GetEnv(key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", fmt.Errorf("GetEnv: %s: %w", key, MissingEnvErr)
	}

	return value, nil
}

// GetEnvFloat returns fallback when key is unset.
func GetEnvFloat(key string, fallback float64) (float64, error) {
	value, err := GetEnv(key)
	if err != nil {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("GetEnvFloat: %s=%q: %w", key, value, err)
	}

	return f, nil
}
