package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotDeclared is returned when resolving a path the catalog never declared.
	ErrNotDeclared = errors.New("asset: model not declared")
	// ErrNotLoaded is returned when resolving a declared path before Load.
	ErrNotLoaded = errors.New("asset: model not loaded")
	// ErrNotFound is returned by Load when a declared file is absent on disk.
	ErrNotFound = errors.New("asset: model file not found")
)

// Provider resolves model paths for a space.
type Provider interface {
	ResolveModel(path string) (*Model, error)
}

// LoaderFunc reads a model from disk.
type LoaderFunc func(path string) (*Model, error)

// Catalog holds the declared model paths of a world and their loaded models.
type Catalog struct {
	mu       sync.RWMutex
	declared map[string]struct{}
	models   map[string]*Model
	load     LoaderFunc
}

// NewCatalog creates an empty catalog that loads OBJ files.
func NewCatalog() *Catalog {
	return &Catalog{
		declared: make(map[string]struct{}),
		models:   make(map[string]*Model),
		load:     LoadOBJ,
	}
}

// SetLoader replaces the file loader used by Load.
func (c *Catalog) SetLoader(fn LoaderFunc) {
	c.load = fn
}

// Declare registers paths that the world may resolve.
func (c *Catalog) Declare(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		c.declared[p] = struct{}{}
	}
}

// Add declares and stores an already built model.
func (c *Catalog) Add(m *Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declared[m.Path] = struct{}{}
	c.models[m.Path] = m
}

// Remove forgets a model and its declaration.
func (c *Catalog) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.declared, path)
	delete(c.models, path)
}

// Load reads every declared path that has no model yet. Missing files fail
// with ErrNotFound.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	var pending []string
	for p := range c.declared {
		if _, ok := c.models[p]; !ok {
			pending = append(pending, p)
		}
	}
	c.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, path := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := c.load(path)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			if err != nil {
				return fmt.Errorf("asset: load %s: %w", path, err)
			}

			c.mu.Lock()
			c.models[path] = m
			c.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// ResolveModel returns the loaded model for a declared path.
func (c *Catalog) ResolveModel(path string) (*Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.declared[path]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDeclared, path)
	}
	m, ok := c.models[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, path)
	}
	return m, nil
}

// Len returns the number of declared paths.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.declared)
}
