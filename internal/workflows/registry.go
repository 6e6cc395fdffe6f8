// Package workflows holds the workflow registry that backs the sidebar.
package workflows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

const defaultNamePrefix = "Workflow "

// Registry is a keyed collection of workflows persisted through a Store.
// While Load runs the registry reports IsSyncing and refuses Create.
type Registry struct {
	store Store
	now   func() time.Time

	syncing atomic.Bool

	mu        sync.RWMutex
	workflows map[string]models.Workflow
	created   int
}

// RegistryOption configures a registry
type RegistryOption func(*Registry)

// WithClock overrides the time source used for LastModified
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry over store
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:     store,
		now:       time.Now,
		workflows: make(map[string]models.Workflow),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open builds the store named by backend under dataDir
func Open(backend, dataDir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "file":
		return NewFileStore(dataDir)
	case "sqlite":
		return NewSQLiteStore(dataDir)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}

// Load replaces the in-memory entries with the store contents. The sync flag
// is raised under the lock, so a Create either completes before the store
// read or is refused.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	r.syncing.Store(true)
	r.mu.Unlock()
	defer r.syncing.Store(false)

	list, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.workflows = make(map[string]models.Workflow, len(list))
	for _, wf := range list {
		r.workflows[wf.ID] = wf
	}
	r.created = highestDefaultNumber(list)

	return nil
}

// highestDefaultNumber returns the largest n among names of the form
// "Workflow <n>", or 0
func highestDefaultNumber(list []models.Workflow) int {
	highest := 0
	for _, wf := range list {
		rest, ok := strings.CutPrefix(wf.Name, defaultNamePrefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// IsSyncing reports whether a Load is in progress
func (r *Registry) IsSyncing() bool {
	return r.syncing.Load()
}

// Create adds a workflow and returns its id. A blank name becomes
// "Workflow <n>". Colours rotate through models.WorkflowPalette.
func (r *Registry) Create(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IsSyncing() {
		return "", apierrors.ErrSyncInProgress
	}

	n := r.created + 1
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultNamePrefix + strconv.Itoa(n)
	}

	wf := models.Workflow{
		ID:           uuid.NewString(),
		Name:         name,
		Color:        models.WorkflowPalette[(n-1)%len(models.WorkflowPalette)],
		LastModified: r.now().UTC(),
	}

	if err := r.store.Save(ctx, wf); err != nil {
		return "", fmt.Errorf("failed to create workflow: %w", err)
	}

	r.workflows[wf.ID] = wf
	r.created = n

	return wf.ID, nil
}

// Get returns the workflow with id
func (r *Registry) Get(id string) (models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.workflows[id]
	if !ok {
		return models.Workflow{}, fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
	}
	return wf, nil
}

// Rename changes the name and bumps LastModified
func (r *Registry) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("workflow name cannot be empty")
	}
	return r.update(ctx, id, func(wf *models.Workflow) {
		wf.Name = name
	})
}

// SetColor changes the colour and bumps LastModified. An empty colour falls
// back to the default on display.
func (r *Registry) SetColor(ctx context.Context, id, color string) error {
	return r.update(ctx, id, func(wf *models.Workflow) {
		wf.Color = strings.TrimSpace(color)
	})
}

// Touch bumps LastModified
func (r *Registry) Touch(ctx context.Context, id string) error {
	return r.update(ctx, id, func(*models.Workflow) {})
}

// Delete removes the workflow
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workflows[id]; !ok {
		return fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	delete(r.workflows, id)
	return nil
}

// Snapshot returns an unordered copy of the entries
func (r *Registry) Snapshot() []models.Workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		out = append(out, wf)
	}
	return out
}

// Sorted returns the entries oldest first
func (r *Registry) Sorted() []models.Workflow {
	out := r.Snapshot()
	models.SortByLastModified(out)
	return out
}

// Len returns the number of entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}

// Close closes the backing store
func (r *Registry) Close() error {
	return r.store.Close()
}

func (r *Registry) update(ctx context.Context, id string, mutate func(*models.Workflow)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wf, ok := r.workflows[id]
	if !ok {
		return fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
	}

	mutate(&wf)
	wf.LastModified = r.now().UTC()

	if err := r.store.Save(ctx, wf); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	r.workflows[id] = wf
	return nil
}
