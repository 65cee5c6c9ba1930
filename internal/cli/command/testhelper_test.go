package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/taskdeck-go/internal/storage"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
)

// mockServer is a task API fake keyed by "METHOD /path".
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
		calls:    make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		m.mu.Lock()
		m.calls[key]++
		handler, ok := m.handlers[key]
		m.mu.Unlock()
		if !ok {
			jsonResponse(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for an exact method and path.
func (m *mockServer) handle(method, path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method+" "+path] = handler
}

func (m *mockServer) callCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method+" "+path]
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// testEnv is an isolated home with a config file pointing at a mock server.
type testEnv struct {
	server      *mockServer
	dir         string
	configPath  string
	storePath   string
	metricsPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	e := &testEnv{
		server:      newMockServer(t),
		dir:         dir,
		configPath:  filepath.Join(dir, "cli.yaml"),
		storePath:   filepath.Join(dir, "tokens.json"),
		metricsPath: filepath.Join(dir, "metrics.prom"),
	}
	content := fmt.Sprintf(`server: %s
timeout: 2s
retry:
  max: 1
  delay: 1ms
store:
  driver: file
  path: %s
metrics:
  file: %s
`, e.server.URL, e.storePath, e.metricsPath)
	if err := os.WriteFile(e.configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return e
}

// run executes the CLI with empty stdin and returns its stdout and stderr.
func (e *testEnv) run(args ...string) (string, string, error) {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) (string, string, error) {
	app := App()
	var stdout, stderr bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"taskdeck-cli", "--config", e.configPath}, args...)
	err := app.Run(argv)
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) seedTokens(t *testing.T, access, refresh string) {
	t.Helper()
	s, err := storage.NewFileStore(e.storePath, logger.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.SetTokens(access, refresh); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
}

// tokens reads the persisted pair through a fresh store.
func (e *testEnv) tokens(t *testing.T) (string, string) {
	t.Helper()
	s, err := storage.NewFileStore(e.storePath, logger.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s.AccessToken(), s.RefreshToken()
}

func sampleTasks() []map[string]any {
	return []map[string]any{
		{"id": 1, "title": "Write report", "completed": false, "created_at": "2026-10-01T09:00:00Z", "owner_id": 3},
		{"id": 2, "title": "Review PR", "description": "backend", "completed": true, "created_at": "2026-10-02T09:00:00Z", "owner_id": 3},
	}
}
