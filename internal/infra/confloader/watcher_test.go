package confloader

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// startWatcher watches path, records every reported change on the returned
// channel and stops the watcher when the test ends.
func startWatcher(t *testing.T, path string, opts ...WatcherOption) <-chan string {
	t.Helper()

	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 16)
	w.OnChange(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})
	w.StartAsync()

	// fsnotify registers synchronously, but the loop goroutine needs a moment.
	time.Sleep(50 * time.Millisecond)
	return changed
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestNewWatcher_Defaults(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if w.logger == nil {
		t.Error("logger is nil")
	}
}

func TestWithDebounce(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want time.Duration
	}{
		{"zero disables", 0, 0},
		{"positive", 5 * time.Millisecond, 5 * time.Millisecond},
		{"negative ignored", -time.Second, DefaultDebounce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(WithDebounce(tt.d))
			if err != nil {
				t.Fatalf("NewWatcher() error = %v", err)
			}
			defer w.Stop()
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestWatcher_Watch_MissingDirectory(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "absent", "respkv.yaml")); err == nil {
		t.Error("Watch() error = nil for missing directory")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "respkv.yaml")

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if err := w.Watch(cfg); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: cfg, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: cfg, Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: cfg, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: cfg, Op: fsnotify.Remove}, false},
		{"sibling", fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.relevant(tt.event)
			if ok != tt.want {
				t.Fatalf("relevant() ok = %v, want %v", ok, tt.want)
			}
			if ok && path != cfg {
				t.Errorf("relevant() path = %q, want %q", path, cfg)
			}
		})
	}
}

func TestWatcher_ReportsWrite(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "respkv.yaml")
	writeFile(t, cfg, "log:\n  level: info\n")

	changed := startWatcher(t, cfg, WithDebounce(10*time.Millisecond))
	writeFile(t, cfg, "log:\n  level: debug\n")

	select {
	case path := <-changed:
		if path != cfg {
			t.Errorf("changed path = %q, want %q", path, cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported within 2s")
	}
}

func TestWatcher_ReportsCreate(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "respkv.yaml")

	changed := startWatcher(t, cfg, WithDebounce(0))
	writeFile(t, cfg, "workers:\n  count: 2\n")

	select {
	case path := <-changed:
		if filepath.Base(path) != "respkv.yaml" {
			t.Errorf("changed path = %q, want respkv.yaml", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported for created file within 2s")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "respkv.yaml")
	writeFile(t, cfg, "log:\n  level: info\n")

	changed := startWatcher(t, cfg, WithDebounce(0))
	writeFile(t, filepath.Join(dir, "respkv.yaml.swp"), "noise")

	select {
	case path := <-changed:
		t.Errorf("change reported for unwatched file %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "respkv.yaml")
	writeFile(t, cfg, "log:\n  level: info\n")

	changed := startWatcher(t, cfg, WithDebounce(200*time.Millisecond))
	for _, level := range []string{"debug", "warn", "error", "info"} {
		writeFile(t, cfg, "log:\n  level: "+level+"\n")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported within 2s")
	}
	select {
	case <-changed:
		t.Error("burst of writes reported more than once")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_HandlersAddedWhileRunning(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.OnChange(func(string) { calls.Add(1) })
			w.notify("/etc/respkv.yaml")
		}()
	}
	wg.Wait()

	// Each notify sees at least its own handler.
	if got := calls.Load(); got < 8 {
		t.Errorf("handler calls = %d, want at least 8", got)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
