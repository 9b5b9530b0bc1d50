package deck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/util"
)

// Channel carries the encoded deck between the engine and its host. The
// engine publishes after every accepted mutation; the host reports changes it
// made itself, such as back/forward navigation.
type Channel interface {
	Publish(fragment string) error
	OnExternalChange(fn func(fragment string))
}

// MemoryChannel is an in-process Channel.
type MemoryChannel struct {
	mu        sync.Mutex
	current   string
	listeners []func(string)
}

func NewMemoryChannel(initial string) *MemoryChannel {
	return &MemoryChannel{current: initial}
}

func (c *MemoryChannel) Publish(fragment string) error {
	c.mu.Lock()
	c.current = fragment
	c.mu.Unlock()
	return nil
}

func (c *MemoryChannel) OnExternalChange(fn func(string)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Current returns the last fragment published or navigated to.
func (c *MemoryChannel) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Navigate replaces the fragment from the host side and notifies listeners.
func (c *MemoryChannel) Navigate(fragment string) {
	c.mu.Lock()
	c.current = fragment
	listeners := append([]func(string){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(fragment)
	}
}

// FileChannel keeps the fragment in a file. Edits made to the file by anyone
// else are reported through OnExternalChange while Watch runs.
type FileChannel struct {
	path   string
	logger *zap.Logger

	mu        sync.Mutex
	written   string
	listeners []func(string)
}

func NewFileChannel(path string, logger *zap.Logger) *FileChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileChannel{path: path, logger: logger}
}

// Read returns the fragment stored in the file; a missing file is an empty fragment.
func (c *FileChannel) Read() (string, error) {
	b, err := c.readRaw()
	return strings.TrimSpace(string(b)), err
}

func (c *FileChannel) readRaw() ([]byte, error) {
	b, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

func (c *FileChannel) Publish(fragment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := util.WriteFile(c.path, []byte(fragment+"\n")); err != nil {
		return fmt.Errorf("publish fragment: %w", err)
	}
	c.written = fragment
	return nil
}

func (c *FileChannel) OnExternalChange(fn func(string)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Watch blocks until ctx is done, reporting external edits of the file. The
// parent directory is watched so editors that replace the file are seen too.
func (c *FileChannel) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dir := filepath.Dir(c.path)
	if err := util.EnsureDir(dir); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(c.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.reload()
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("fragment watcher error", zap.Error(werr))
		}
	}
}

// reload reports the file content if it changed. A zero-byte file is a writer
// that has truncated but not yet written; clearing the deck takes a file
// holding just a newline or "#".
//
// The read happens under c.mu so it cannot interleave with Publish.
func (c *FileChannel) reload() {
	c.mu.Lock()
	b, err := c.readRaw()
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("read fragment file", zap.String("path", c.path), zap.Error(err))
		return
	}
	fragment := strings.TrimSpace(string(b))
	if len(b) == 0 || fragment == c.written {
		c.mu.Unlock()
		return
	}
	c.written = fragment
	listeners := append([]func(string){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(fragment)
	}
}
