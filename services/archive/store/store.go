// Package store persists archive artifacts as flat files: one directory per
// game holding a snapshot.json plus one history file per submitter. Files
// are written whole and treated as immutable afterwards; there is no
// locking, writers are assumed single-writer-per-key.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"warfish-archive/lib/warfish"
)

type Store struct {
	root string
}

func New(root string) Store {
	return Store{root: root}
}

func (s Store) gameDir(gameID int) string {
	return filepath.Join(s.root, fmt.Sprint(gameID))
}

func (s Store) historyPath(gameID int, submitter string) string {
	return filepath.Join(s.gameDir(gameID), submitter+".json")
}

func (s Store) snapshotPath(gameID int) string {
	return filepath.Join(s.gameDir(gameID), "snapshot.json")
}

func (s Store) writeJSON(path string, value any) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}
	serialized, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(path, serialized, 0o644)
}

func (s Store) WriteHistory(gameID int, submitter string, rows []warfish.RawHistoryRow) error {
	return s.writeJSON(s.historyPath(gameID, submitter), rows)
}

func (s Store) ReadHistory(gameID int, submitter string) ([]warfish.RawHistoryRow, error) {
	contents, err := os.ReadFile(s.historyPath(gameID, submitter))
	if err != nil {
		return nil, err
	}
	var rows []warfish.RawHistoryRow
	err = json.Unmarshal(contents, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s Store) WriteSnapshot(gameID int, data *warfish.GameData) error {
	return s.writeJSON(s.snapshotPath(gameID), data)
}

func (s Store) ReadSnapshot(gameID int) (*warfish.GameData, error) {
	contents, err := os.ReadFile(s.snapshotPath(gameID))
	if err != nil {
		return nil, err
	}
	var data warfish.GameData
	err = json.Unmarshal(contents, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
