// Package catalog holds the enumerated set of instruments a user can forecast.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"StockDash/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when a catalog source lists no instruments.
var ErrEmptyCatalog = errors.New("catalog has no instruments")

type fileFormat struct {
	Instruments []string `yaml:"instruments"`
}

// Catalog is a concurrency-safe, ordered instrument list. The zero value is not usable.
type Catalog struct {
	mu    sync.RWMutex
	path  string
	items []models.Instrument
	index map[string]int
}

// New builds an in-memory catalog from keys, preserving order and dropping duplicates.
func New(keys []string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.replace(keys); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a catalog from a YAML file of the form `instruments: [key, ...]`.
func Load(path string) (*Catalog, error) {
	keys, err := readFile(path)
	if err != nil {
		return nil, err
	}
	c := &Catalog{path: path}
	if err := c.replace(keys); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Reload re-reads the backing file. On error the current list is kept.
// It reports whether the instrument list changed.
func (c *Catalog) Reload() (bool, error) {
	if c.path == "" {
		return false, nil
	}
	keys, err := readFile(c.path)
	if err != nil {
		return false, err
	}

	c.mu.RLock()
	same := len(keys) == len(c.items)
	for i := 0; same && i < len(keys); i++ {
		same = strings.TrimSpace(keys[i]) == c.items[i].Key
	}
	c.mu.RUnlock()
	if same {
		return false, nil
	}

	if err := c.replace(keys); err != nil {
		return false, fmt.Errorf("catalog %s: %w", c.path, err)
	}
	return true, nil
}

// List returns a copy of the instruments in catalog order.
func (c *Catalog) List() []models.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Instrument, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an instrument by its exact key.
func (c *Catalog) Lookup(key string) (models.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[key]
	if !ok {
		return models.Instrument{}, false
	}
	return c.items[i], true
}

// Default returns the first instrument.
func (c *Catalog) Default() (models.Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 {
		return models.Instrument{}, false
	}
	return c.items[0], true
}

// Len returns the number of instruments.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Catalog) replace(keys []string) error {
	items := make([]models.Instrument, 0, len(keys))
	index := make(map[string]int, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := index[k]; dup {
			continue
		}
		index[k] = len(items)
		items = append(items, models.NewInstrument(k))
	}
	if len(items) == 0 {
		return ErrEmptyCatalog
	}

	c.mu.Lock()
	c.items = items
	c.index = index
	c.mu.Unlock()
	return nil
}

func readFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.Instruments, nil
}
