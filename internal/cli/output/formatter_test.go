package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type testTask struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty" table:"wide"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	secret      string
}

func sampleTasks() []testTask {
	desc := "buy oat milk"
	return []testTask{
		{ID: 1, Title: "groceries", Description: &desc, CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)},
		{ID: 2, Title: "taxes", Completed: true},
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	tf, ok := NewFormatter("unknown", true).(*TableFormatter)
	if !ok {
		t.Fatal("expected TableFormatter for unknown format")
	}
	if !tf.Wide {
		t.Error("expected Wide=true")
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", " yaml "} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", in, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sampleTasks()[1]); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"title": "taxes"`) {
		t.Errorf("output missing indented title: %s", out)
	}
	if strings.Contains(out, "description") {
		t.Errorf("nil description should be omitted: %s", out)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"server": "http://localhost:8000", "retry": map[string]any{"max": 3}}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "retry:\n  max: 3\nserver: http://localhost:8000\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, sampleTasks()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "ID TITLE COMPLETED CREATED_AT" {
		t.Errorf("headers = %v", fields)
	}
	if !strings.Contains(lines[1], "2026-03-01 09:30") {
		t.Errorf("row 1 missing timestamp: %q", lines[1])
	}
	if !strings.Contains(lines[2], "yes") || !strings.HasSuffix(strings.TrimSpace(lines[2]), "-") {
		t.Errorf("row 2 = %q, want completed yes and empty date", lines[2])
	}
}

func TestTableFormatter_Wide(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{Wide: true}).Format(&buf, sampleTasks()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "DESCRIPTION") || !strings.Contains(buf.String(), "buy oat milk") {
		t.Errorf("wide output missing description:\n%s", buf.String())
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, sampleTasks()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "TITLE") {
		t.Errorf("headers printed with NoHeaders:\n%s", buf.String())
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	task := sampleTasks()[0]
	if err := (&TableFormatter{}).Format(&buf, &task); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "FIELD") || !strings.Contains(out, "groceries") {
		t.Errorf("unexpected struct table:\n%s", out)
	}
	if strings.Contains(out, "secret") {
		t.Errorf("unexported field rendered:\n%s", out)
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"b": 2, "a": time.Second, "c": nil}
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := [][]string{{"KEY", "VALUE"}, {"a", "1s"}, {"b", "2"}, {"c", "-"}}
	for i, w := range want {
		if got := strings.Fields(lines[i]); strings.Join(got, " ") != strings.Join(w, " ") {
			t.Errorf("line %d = %v, want %v", i, got, w)
		}
	}
}

func TestTableFormatter_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []testTask{}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "ID  TITLE  COMPLETED  CREATED_AT" {
		t.Errorf("empty slice output = %q", buf.String())
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("fallback output = %q", buf.String())
	}
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := &Table{Headers: []string{"NAME", "VALUE"}}
	table.AddRow("server", "http://localhost:8000")
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "server  http://localhost:8000") {
		t.Errorf("Render() = %q", buf.String())
	}
}
