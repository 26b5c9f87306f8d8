package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/ledger"
)

var legacyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileStore keeps one JSON asset per player under path. Legacy records are the
// pre-migration two line text files (points, then limit count) named after the
// player, kept under legacyPath and moved to archivePath once imported.
type FileStore struct {
	path        string
	legacyPath  string
	archivePath string

	mu sync.Mutex
}

func NewFileStore(path, legacyPath, archivePath string) (*FileStore, error) {
	for _, dir := range []string{path, legacyPath, archivePath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %q: %w", dir, err)
		}
	}

	return &FileStore{
		path:        path,
		legacyPath:  legacyPath,
		archivePath: archivePath,
	}, nil
}

func (s *FileStore) Load(ctx context.Context, id uuid.UUID) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.loadAsset(s.filePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = asset.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", id, err)
	}
	if asset.Id() != id.String() {
		return nil, fmt.Errorf("asset id %q does not match %s", asset.Id(), id)
	}

	return asset.Spec, nil
}

func (s *FileStore) Save(ctx context.Context, id uuid.UUID, r ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset := &Asset[*ledger.Record]{
		Version:    assetVersion,
		Identifier: id.String(),
		Spec:       &r,
	}

	jsonData, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.filePath(id), jsonData, 0644)
}

func (s *FileStore) LoadLegacy(ctx context.Context, name string) (*ledger.Record, error) {
	path, err := s.legacyFile(s.legacyPath, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening legacy file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	return parseLegacy(file)
}

func (s *FileStore) SaveLegacy(ctx context.Context, name string, r ledger.Record) error {
	path, err := s.legacyFile(s.legacyPath, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := fmt.Sprintf("%d\n%d\n", r.Points, r.LimitReachedCount)
	return atomicWrite(path, []byte(data), 0644)
}

// ArchiveLegacy moves a legacy record out of the way so it is never imported twice.
func (s *FileStore) ArchiveLegacy(ctx context.Context, name string) error {
	from, err := s.legacyFile(s.legacyPath, name)
	if err != nil {
		return err
	}
	to, err := s.legacyFile(s.archivePath, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("moving legacy file to %q: %w", to, err)
	}
	return nil
}

// parseLegacy reads the legacy format: the first line is the points, the optional
// second line the limit count.
func parseLegacy(r io.Reader) (*ledger.Record, error) {
	sc := bufio.NewScanner(r)

	var lines []string
	for sc.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("legacy file is empty")
	}

	rec := &ledger.Record{}

	points, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("parsing points: %w", err)
	}
	rec.Points = points

	if len(lines) > 1 && lines[1] != "" {
		count, err := strconv.Atoi(lines[1])
		if err != nil {
			return nil, fmt.Errorf("parsing limit count: %w", err)
		}
		rec.LimitReachedCount = count
	}

	return rec, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) filePath(id uuid.UUID) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", id))
}

func (s *FileStore) legacyFile(dir string, name string) (string, error) {
	if !legacyNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid player name %q", name)
	}
	return filepath.Join(dir, name), nil
}

func (s *FileStore) loadAsset(path string) (*Asset[*ledger.Record], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset[*ledger.Record]{
		Spec: &ledger.Record{},
	}
	err = json.Unmarshal(jsonData, asset)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}
