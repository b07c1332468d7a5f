package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHooks_Fire(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process test in short mode")
	}

	pluginRoot := t.TempDir()
	out := filepath.Join(t.TempDir(), "hook.out")

	install := func(name string, events []string, script string) {
		p := scriptPlugin(t, name, script, events...)
		dst := filepath.Join(pluginRoot, name)
		if err := os.Rename(p.Path, dst); err != nil {
			t.Fatalf("failed to move plugin: %v", err)
		}
		writeManifest(t, pluginRoot, name, Manifest{Name: name, Executable: name + ".sh", Events: events})
	}

	install("recorder", []string{EventRunComplete}, `cat > `+out+`
echo '{"success":true}'
`)
	install("silent", []string{EventAchievement}, `echo '{"success":true}'
`)
	install("broken", []string{EventRunComplete}, `exit 3
`)

	manager := NewManager(pluginRoot)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := NewHooks(manager, NewExecutor(5*time.Second))
	started := hooks.Fire(context.Background(), runRequest())
	hooks.Wait()

	if started != 2 {
		t.Errorf("expected 2 run_complete hooks, got %d", started)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("recorder did not run: %v", err)
	}
	if !strings.Contains(string(data), `"challenge_id":"LASER"`) {
		t.Errorf("expected run summary on stdin, got %s", data)
	}
}

func TestHooks_Fire_NoSubscribers(t *testing.T) {
	hooks := NewHooks(NewManager(t.TempDir()), NewExecutor(time.Second))

	if n := hooks.Fire(context.Background(), &Request{Event: EventRunComplete}); n != 0 {
		t.Errorf("expected no hooks, got %d", n)
	}
	hooks.Wait()
}
