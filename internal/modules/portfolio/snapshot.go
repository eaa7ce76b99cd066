package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristath/persona/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotFormat selects the on-disk encoding of the holdings snapshot
type SnapshotFormat string

const (
	// FormatJSON writes investments.json
	FormatJSON SnapshotFormat = "json"
	// FormatMsgpack writes investments.msgpack
	FormatMsgpack SnapshotFormat = "msgpack"
)

// snapshotBaseName is the file stem inside the persona's saved-memory folder
const snapshotBaseName = "investments"

// ParseSnapshotFormat returns the format for name, defaulting to JSON
func ParseSnapshotFormat(name string) (SnapshotFormat, error) {
	switch SnapshotFormat(name) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unknown snapshot format: %s", name)
	}
}

// SnapshotPath returns the snapshot file path for dir and format
func SnapshotPath(dir string, format SnapshotFormat) string {
	return filepath.Join(dir, snapshotBaseName+"."+string(format))
}

// Load replaces the store contents with the snapshot in loadPath.
//
// An empty loadPath starts the store empty. Otherwise investments.json is
// read, falling back to investments.msgpack when no JSON file exists. Any read
// or decode failure leaves the store empty and is returned as a diagnostic;
// the failure is recoverable and callers should log it and continue.
func (s *Store) Load(loadPath string) error {
	s.holdings = make(map[string]domain.Holding)
	if loadPath == "" {
		return nil
	}

	holdings, path, err := readSnapshot(loadPath)
	if err != nil {
		return fmt.Errorf("failed to load portfolio snapshot from %s: %w", loadPath, err)
	}

	s.Replace(holdings)
	s.log.Info().Str("path", path).Int("holdings", len(s.holdings)).Msg("Portfolio snapshot loaded")
	return nil
}

// Save writes the store contents to dir in the given format and returns the
// written path. The file is written to a temporary name and renamed into place.
func (s *Store) Save(dir string, format SnapshotFormat) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := encodeSnapshot(s.holdings, format)
	if err != nil {
		return "", err
	}

	path := SnapshotPath(dir, format)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	s.log.Info().Str("path", path).Int("holdings", len(s.holdings)).Msg("Portfolio snapshot saved")
	return path, nil
}

func readSnapshot(dir string) (map[string]domain.Holding, string, error) {
	path := SnapshotPath(dir, FormatJSON)
	data, err := os.ReadFile(path)
	format := FormatJSON
	if errors.Is(err, os.ErrNotExist) {
		msgpackPath := SnapshotPath(dir, FormatMsgpack)
		if msgpackData, mpErr := os.ReadFile(msgpackPath); mpErr == nil {
			path, data, format, err = msgpackPath, msgpackData, FormatMsgpack, nil
		}
	}
	if err != nil {
		return nil, path, err
	}

	holdings, err := decodeSnapshot(data, format)
	if err != nil {
		return nil, path, err
	}
	return holdings, path, nil
}

func encodeSnapshot(holdings map[string]domain.Holding, format SnapshotFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(holdings, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON snapshot: %w", err)
		}
		return data, nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(holdings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode msgpack snapshot: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown snapshot format: %s", format)
	}
}

func decodeSnapshot(data []byte, format SnapshotFormat) (map[string]domain.Holding, error) {
	holdings := make(map[string]domain.Holding)
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &holdings); err != nil {
			return nil, fmt.Errorf("failed to decode JSON snapshot: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &holdings); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot format: %s", format)
	}
	return holdings, nil
}
