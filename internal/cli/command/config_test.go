package command

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigPath(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := e.run("config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != e.configPath {
		t.Errorf("output = %q, want %q", out, e.configPath)
	}
}

func TestConfigShow_MasksPassphrase(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv("TASKDECK_STORE_PASSPHRASE", "hunter2")

	out, _, err := e.run("-o", "json", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("passphrase leaked: %s", out)
	}

	var view map[string]string
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view["store.passphrase"] != "******" {
		t.Errorf("store.passphrase = %q, want mask", view["store.passphrase"])
	}
	if view["retry.delay"] != "1ms" || view["server"] != e.server.URL {
		t.Errorf("view = %v, want values from the config file", view)
	}
}

func TestConfigShow_DoesNotOpenStore(t *testing.T) {
	e := newTestEnv(t)

	if _, _, err := e.run("config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if _, err := os.Stat(e.storePath); !os.IsNotExist(err) {
		t.Errorf("token file created by config show: %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(e.dir, "fresh", "cli.yaml")

	app := func(args ...string) error {
		a := App()
		a.Writer = &strings.Builder{}
		a.ErrWriter = &strings.Builder{}
		return a.Run(append([]string{"taskdeck-cli", "--config", path}, args...))
	}

	if err := app("--server", "https://tasks.example.com", "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	if !strings.Contains(string(data), "server: https://tasks.example.com") {
		t.Errorf("written config:\n%s", data)
	}

	if err := app("config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if err := app("config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}
