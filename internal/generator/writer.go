package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/profilegraph/internal/domain"
)

// Dataset file names inside an output directory.
const (
	ProfilesFile    = "profiles.json"
	FriendshipsFile = "friendships.json"
)

// ErrMissingDataset is returned when a dataset file cannot be located.
var ErrMissingDataset = errors.New("dataset not found")

// WriteDataset serializes the dataset into profiles.json and friendships.json under dir.
func WriteDataset(dataset domain.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, ProfilesFile), dataset.Profiles); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, FriendshipsFile), dataset.Friendships)
}

// ReadDataset loads a dataset written by WriteDataset. A missing friendships
// file yields a dataset without edges; a missing profiles file is an error.
func ReadDataset(dir string) (domain.Dataset, error) {
	var ds domain.Dataset

	profilesPath := filepath.Join(dir, ProfilesFile)
	if _, err := os.Stat(profilesPath); err != nil {
		return ds, fmt.Errorf("%w: %s", ErrMissingDataset, profilesPath)
	}
	if err := readJSON(profilesPath, &ds.Profiles); err != nil {
		return ds, err
	}

	friendshipsPath := filepath.Join(dir, FriendshipsFile)
	if _, err := os.Stat(friendshipsPath); errors.Is(err, os.ErrNotExist) {
		return ds, nil
	}
	if err := readJSON(friendshipsPath, &ds.Friendships); err != nil {
		return ds, err
	}
	return ds, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
