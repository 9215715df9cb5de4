package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// LocalBackend persists the guest cart as a single JSON file holding the
// simplified line array. An unparseable file is discarded and the cart
// starts empty, mirroring how corrupted browser storage is handled.
type LocalBackend struct {
	mu   sync.Mutex
	path string
}

// NewLocalBackend builds a guest backend writing to path. An empty path
// defaults to storefront-cart.json in the user cache directory.
func NewLocalBackend(path string) (*LocalBackend, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolving cache dir: %w", err)
		}
		path = filepath.Join(dir, "storefront-cart.json")
	}
	return &LocalBackend{path: path}, nil
}

func (b *LocalBackend) Load(ctx context.Context) ([]Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read()
}

func (b *LocalBackend) Add(ctx context.Context, line Line) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.read()
	if err != nil {
		return err
	}
	merged := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}
	return b.write(lines)
}

func (b *LocalBackend) Remove(ctx context.Context, productID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.read()
	if err != nil {
		return err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	return b.write(kept)
}

func (b *LocalBackend) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return b.Remove(ctx, productID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.read()
	if err != nil {
		return err
	}
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{ProductID: productID, Quantity: quantity})
	}
	return b.write(lines)
}

func (b *LocalBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeFile()
}

func (b *LocalBackend) Replace(ctx context.Context, lines []Line) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(lines) == 0 {
		return b.removeFile()
	}
	return b.write(lines)
}

// Discard deletes the guest storage. Called when the session becomes
// authenticated; the guest cart is not merged into the account cart.
func (b *LocalBackend) Discard(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeFile()
}

// Path returns the storage file location.
func (b *LocalBackend) Path() string {
	return b.path
}

func (b *LocalBackend) read() ([]Line, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Line{}, nil
		}
		return nil, fmt.Errorf("reading guest cart: %w", err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		// Corrupted storage heals itself: drop the file and start empty.
		_ = b.removeFile()
		return []Line{}, nil
	}

	lines := make([]Line, 0, len(elements))
	for _, element := range elements {
		var line Line
		if err := json.Unmarshal(element, &line); err != nil {
			// A single mangled entry does not poison the rest; the
			// sanitize pass drops whatever remains invalid.
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *LocalBackend) write(lines []Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding guest cart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("creating guest cart dir: %w", err)
	}
	if err := os.WriteFile(b.path, payload, 0o600); err != nil {
		return fmt.Errorf("writing guest cart: %w", err)
	}
	return nil
}

func (b *LocalBackend) removeFile() error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing guest cart: %w", err)
	}
	return nil
}
