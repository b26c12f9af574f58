package config

import (
	"os"

	"github.com/joho/godotenv"
)

// FileSystem abstracts the file operations used while loading layers
// (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	// LoadEnv loads a dotenv file into the process environment without
	// overriding variables that are already set.
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem using actual file operations.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}
