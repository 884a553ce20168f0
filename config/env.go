package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv pulls a local .env file into the environment if one exists.
func LoadDotEnv() {
	godotenv.Load()
}

// GetDataLocation returns the root directory all app state lives under.
func GetDataLocation() string {
	if custom := os.Getenv("GUYSMUSIC_DATA"); custom != "" {
		return custom
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(homeDir, "Music", "GuysMusicApp")
}

// GetMusicDir is where downloaded song files live (the file store root).
func GetMusicDir() string {
	return filepath.Join(GetDataLocation(), "music")
}

// GetStateDir is where the key-value store keeps its blobs.
func GetStateDir() string {
	return filepath.Join(GetDataLocation(), "state")
}

// GetTmpDir is where in-flight downloads land before being placed.
func GetTmpDir() string {
	return filepath.Join(GetDataLocation(), "tmp")
}

// GetEndpoint returns the default catalog manifest address, if configured.
func GetEndpoint() string {
	return os.Getenv("GUYSMUSIC_ENDPOINT")
}

// GetDownloadWorkers returns the background download worker count.
func GetDownloadWorkers() int {
	if v := os.Getenv("GUYSMUSIC_DOWNLOAD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 4
}

// GetLogLevel returns the zerolog level name, defaulting to info.
func GetLogLevel() string {
	if v := os.Getenv("GUYSMUSIC_LOG_LEVEL"); v != "" {
		return v
	}
	return "info"
}
