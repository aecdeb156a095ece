// Package crystal keeps the local task crystals: the on-disk inventory that
// mirrors tasks created through the remote service.
package crystal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"taskforge/internal/service"
)

// Crystal is one local task.
type Crystal struct {
	// ID is the local identifier, assigned on creation.
	ID string `yaml:"id"`

	// ServerID is the id assigned by the remote service; empty until synced.
	ServerID string `yaml:"server_id,omitempty"`

	Description string    `yaml:"description"`
	Project     string    `yaml:"project"`
	Priority    string    `yaml:"priority"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// Synced reports whether the crystal has a server-assigned id.
func (c Crystal) Synced() bool { return c.ServerID != "" }

// EffectivePriority returns the crystal priority, unknown values as medium.
func (c Crystal) EffectivePriority() service.Priority {
	return service.ParsePriority(c.Priority)
}

// ErrNotFound is returned when a crystal reference matches nothing.
var ErrNotFound = errors.New("crystal not found")

// ErrAmbiguous is returned when an id prefix matches more than one crystal.
var ErrAmbiguous = errors.New("ambiguous crystal reference")

// Inventory is the ordered set of local crystals.
type Inventory struct {
	mu       sync.Mutex
	path     string
	crystals []Crystal
	lastSync time.Time
}

// file is the on-disk layout.
type file struct {
	LastSync time.Time `yaml:"last_sync,omitempty"`
	Crystals []Crystal `yaml:"crystals"`
}

// NewInventory returns an empty inventory that saves to path.
func NewInventory(path string) *Inventory {
	return &Inventory{path: path}
}

// Load reads the inventory at path. A missing file yields an empty inventory.
func Load(path string) (*Inventory, error) {
	inv := NewInventory(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return inv, nil
		}
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}
	inv.crystals = f.Crystals
	inv.lastSync = f.LastSync
	return inv, nil
}

// Save writes the inventory back to its path.
func (inv *Inventory) Save() error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(inv.path), 0700); err != nil {
		return fmt.Errorf("failed to create inventory directory: %w", err)
	}

	inv.lastSync = time.Now()
	data, err := yaml.Marshal(file{LastSync: inv.lastSync, Crystals: inv.crystals})
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}

	// Replace the file atomically
	tmp, err := os.CreateTemp(filepath.Dir(inv.path), filepath.Base(inv.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	if err := os.Rename(tmp.Name(), inv.path); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}

// Path returns the file the inventory saves to.
func (inv *Inventory) Path() string { return inv.path }

// LastSync returns when the inventory was last saved.
func (inv *Inventory) LastSync() time.Time {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.lastSync
}

// Add appends a crystal, assigning an ID and creation time when missing.
func (inv *Inventory) Add(c Crystal) Crystal {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	inv.crystals = append(inv.crystals, c)
	return c
}

// Len returns the number of crystals.
func (inv *Inventory) Len() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.crystals)
}

// All returns a copy of every crystal in insertion order.
func (inv *Inventory) All() []Crystal {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]Crystal, len(inv.crystals))
	copy(out, inv.crystals)
	return out
}

// Get resolves a reference. "#N" is the 1-based position printed by
// listtasks and "id:X" an exact-or-prefix local or server id. A bare
// reference is tried as a position first, then as an id.
func (inv *Inventory) Get(ref string) (Crystal, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if pos, ok := strings.CutPrefix(ref, "#"); ok {
		return inv.at(pos)
	}
	if id, ok := strings.CutPrefix(ref, "id:"); ok {
		return inv.byID(strings.TrimSpace(id))
	}
	if c, err := inv.at(ref); err == nil {
		return c, nil
	}
	return inv.byID(ref)
}

// at returns the crystal at a 1-based position.
func (inv *Inventory) at(pos string) (Crystal, error) {
	n, err := strconv.Atoi(strings.TrimSpace(pos))
	if err != nil || n < 1 || n > len(inv.crystals) {
		return Crystal{}, ErrNotFound
	}
	return inv.crystals[n-1], nil
}

// byID matches ref exactly, then as a unique prefix, against local and
// server ids.
func (inv *Inventory) byID(ref string) (Crystal, error) {
	if ref == "" {
		return Crystal{}, ErrNotFound
	}

	var matches []Crystal
	for _, c := range inv.crystals {
		if c.ID == ref || c.ServerID == ref {
			return c, nil
		}
		if strings.HasPrefix(c.ID, ref) || (c.ServerID != "" && strings.HasPrefix(c.ServerID, ref)) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return Crystal{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return Crystal{}, ErrAmbiguous
	}
}

// Remove deletes the crystal with the given local id.
func (inv *Inventory) Remove(id string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for i, c := range inv.crystals {
		if c.ID == id {
			inv.crystals = append(inv.crystals[:i], inv.crystals[i+1:]...)
			return true
		}
	}
	return false
}

// Search returns crystals whose description, project or priority contains
// query, case-insensitively.
func (inv *Inventory) Search(query string) []Crystal {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var out []Crystal
	for _, c := range inv.crystals {
		if strings.Contains(strings.ToLower(c.Description), query) ||
			strings.Contains(strings.ToLower(c.Project), query) ||
			strings.Contains(strings.ToLower(c.Priority), query) {
			out = append(out, c)
		}
	}
	return out
}

// ByProject returns crystals whose project equals name, case-insensitively.
func (inv *Inventory) ByProject(name string) []Crystal {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var out []Crystal
	for _, c := range inv.crystals {
		if strings.EqualFold(c.Project, name) {
			out = append(out, c)
		}
	}
	return out
}
