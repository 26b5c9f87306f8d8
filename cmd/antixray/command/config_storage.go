package command

import (
	"fmt"
	"path/filepath"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/storage"
)

type StorageBackend int

const (
	StorageBackendFile StorageBackend = iota
	StorageBackendSQLite
)

func (sb *StorageBackend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "file":
		*sb = StorageBackendFile
	case "sqlite":
		*sb = StorageBackendSQLite
	default:
		return fmt.Errorf("unknown storage backend: %s", text)
	}
	return nil
}

// StorageConfig selects where ledgers live. For the file backend Path is the player
// directory; for sqlite it is the database file, which also holds the legacy records.
type StorageConfig struct {
	Backend     StorageBackend `json:"backend"`
	Path        string         `json:"path"`
	LegacyPath  string         `json:"legacy_path"`
	ArchivePath string         `json:"archive_path"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required"))
	}
	if c.Backend == StorageBackendSQLite && (c.LegacyPath != "" || c.ArchivePath != "") {
		el.Add(fmt.Errorf("storage: legacy_path and archive_path only apply to the file backend"))
	}

	return el.Err()
}

// buildBackend opens the ledger storage. The returned func releases it.
func (c *StorageConfig) buildBackend() (ledger.Backend, func() error, error) {
	switch c.Backend {
	case StorageBackendFile:
		legacy := c.LegacyPath
		if legacy == "" {
			legacy = filepath.Join(filepath.Dir(c.Path), "legacy")
		}
		archive := c.ArchivePath
		if archive == "" {
			archive = filepath.Join(legacy, "converted")
		}

		s, err := storage.NewFileStore(c.Path, legacy, archive)
		if err != nil {
			return nil, nil, fmt.Errorf("creating file store: %w", err)
		}
		return s, func() error { return nil }, nil
	case StorageBackendSQLite:
		s, err := storage.OpenSQLite(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %v", c.Backend)
	}
}
