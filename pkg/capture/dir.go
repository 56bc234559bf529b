package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DirCapturer replays the JPEG files of a directory in name order, looping
// when it reaches the end. It is used for demos and offline runs.
type DirCapturer struct {
	dir string

	mu    sync.Mutex
	files []string
	next  int
}

// NewDirCapturer creates a capturer over the .jpg/.jpeg files in dir.
func NewDirCapturer(dir string) (*DirCapturer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	return &DirCapturer{dir: dir, files: files}, nil
}

// Capture returns the next frame in the directory.
func (d *DirCapturer) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if len(d.files) == 0 {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: no jpeg files in %s", ErrNoFrame, d.dir)
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	return data, nil
}

func (d *DirCapturer) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files) > 0
}

func (d *DirCapturer) Name() string {
	return SourceDir
}

func (d *DirCapturer) Close() error {
	return nil
}
