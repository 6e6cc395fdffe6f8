package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

// Store persists workflow entries for the registry
type Store interface {
	Load(ctx context.Context) ([]models.Workflow, error)
	Save(ctx context.Context, wf models.Workflow) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// FileStore keeps one JSON file per workflow
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStore creates a file store under <dataDir>/workflows
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, "workflows")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workflows directory: %w", err)
	}

	return &FileStore{baseDir: dir}, nil
}

// Dir returns the directory holding the workflow files
func (s *FileStore) Dir() string {
	return s.baseDir
}

// Load reads every workflow file. Corrupted files are skipped.
func (s *FileStore) Load(ctx context.Context) ([]models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflows directory: %w", err)
	}

	var out []models.Workflow
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		wf, err := s.load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, *wf)
	}

	return out, nil
}

// Save writes wf, replacing any previous version
func (s *FileStore) Save(_ context.Context, wf models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	if err := os.WriteFile(s.path(wf.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write workflow: %w", err)
	}

	return nil
}

// Delete removes the workflow file
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
		}
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) load(id string) (*models.Workflow, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}

	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	if wf.ID == "" {
		wf.ID = id
	}

	return &wf, nil
}

// MemoryStore keeps workflows in memory only
type MemoryStore struct {
	mu        sync.Mutex
	workflows map[string]models.Workflow
}

// NewMemoryStore creates an empty in-memory store, optionally seeded
func NewMemoryStore(seed ...models.Workflow) *MemoryStore {
	s := &MemoryStore{workflows: make(map[string]models.Workflow)}
	for _, wf := range seed {
		s.workflows[wf.ID] = wf
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context) ([]models.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, wf)
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, wf models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = wf
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
	}
	delete(s.workflows, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
