package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/infobot/internal/config"
)

const (
	watchBase = `
server:
  log_level: info
bot:
  name: InfoBot
providers:
  joke:
    name: builtin
`
	watchRenamed = `
server:
  log_level: debug
bot:
  name: Oracle
providers:
  joke:
    name: builtin
`
	watchBroken = `
server:
  log_level: bananas
`
	pollEvery = 20 * time.Millisecond
)

// reloads records watcher callbacks.
type reloads struct {
	mu    sync.Mutex
	pairs [][2]*config.Config
	ch    chan struct{}
}

func (r *reloads) record(old, new *config.Config) {
	r.mu.Lock()
	r.pairs = append(r.pairs, [2]*config.Config{old, new})
	r.mu.Unlock()
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

func (r *reloads) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairs)
}

func (r *reloads) last() (old, new *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pairs[len(r.pairs)-1]
	return p[0], p[1]
}

func (r *reloads) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

// rewrite replaces the file and pushes its mtime forward so the change is
// visible on filesystems with coarse timestamps.
func rewrite(t *testing.T, path, content string, bump time.Duration) {
	t.Helper()
	writeFile(t, path, content)
	at := time.Now().Add(bump)
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func startWatcher(t *testing.T, initial string) (*config.Watcher, string, *reloads) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "infobot.yaml")
	writeFile(t, path, initial)

	r := &reloads{ch: make(chan struct{}, 1)}
	w, err := config.NewWatcher(path, r.record, config.WithInterval(pollEvery))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, path, r
}

func TestWatcher_InitialLoad(t *testing.T) {
	t.Parallel()
	w, _, r := startWatcher(t, watchBase)

	cfg := w.Current()
	if cfg == nil || cfg.Bot.Name != "InfoBot" || cfg.Server.LogLevel != config.LogInfo {
		t.Fatalf("Current() = %+v", cfg)
	}
	time.Sleep(5 * pollEvery)
	if r.count() != 0 {
		t.Errorf("callback fired %d times without an edit", r.count())
	}
}

func TestWatcher_InitialLoadFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, watchBroken)
	unknown := filepath.Join(dir, "unknown.yaml")
	writeFile(t, unknown, "personas: []\n")

	for name, path := range map[string]string{
		"missing":       filepath.Join(dir, "nope.yaml"),
		"invalid level": broken,
		"unknown field": unknown,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := config.NewWatcher(path, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	t.Parallel()
	w, path, r := startWatcher(t, watchBase)

	rewrite(t, path, watchRenamed, time.Second)
	r.wait(t)

	old, cur := r.last()
	d := config.Diff(old, cur)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("log level diff = %+v", d)
	}
	if !d.BotNameChanged || d.NewBotName != "Oracle" {
		t.Errorf("bot name diff = %+v", d)
	}
	if len(d.RestartRequired) != 0 {
		t.Errorf("RestartRequired = %v, want none", d.RestartRequired)
	}
	if w.Current() != cur {
		t.Error("Current() should return the config passed to the callback")
	}
}

func TestWatcher_InvalidEditKeepsConfigUntilFixed(t *testing.T) {
	t.Parallel()
	w, path, r := startWatcher(t, watchBase)

	rewrite(t, path, watchBroken, time.Second)
	time.Sleep(10 * pollEvery)
	if r.count() != 0 {
		t.Fatalf("callback fired for an invalid file")
	}
	if w.Current().Bot.Name != "InfoBot" {
		t.Errorf("Current() changed after invalid edit")
	}

	rewrite(t, path, watchRenamed, 2*time.Second)
	r.wait(t)
	if _, cur := r.last(); cur.Bot.Name != "Oracle" {
		t.Errorf("reloaded bot.name = %q, want Oracle", cur.Bot.Name)
	}
}

func TestWatcher_TouchWithoutContentChange(t *testing.T) {
	t.Parallel()
	_, path, r := startWatcher(t, watchBase)

	rewrite(t, path, watchBase, time.Second)
	time.Sleep(10 * pollEvery)
	if r.count() != 0 {
		t.Errorf("callback fired %d times for identical content", r.count())
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	w, path, r := startWatcher(t, watchBase)

	w.Stop()
	w.Stop()

	rewrite(t, path, watchRenamed, time.Second)
	time.Sleep(5 * pollEvery)
	if r.count() != 0 {
		t.Error("stopped watcher must not report changes")
	}
}
