package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"resty.dev/v3"

	"github.com/g5becks/tablenos/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestResolveGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "A")
	writeFile(t, dir, "sub/b.md", "B")
	writeFile(t, dir, "sub/c.txt", "C")

	inputs, err := source.Resolve([]string{filepath.Join(dir, "**", "*.md")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("len(inputs) = %d, want 2: %v", len(inputs), inputs)
	}
	for _, in := range inputs {
		if in.Remote {
			t.Errorf("input %q marked remote", in.Name)
		}
	}
}

func TestResolvePlainPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "content")

	inputs, err := source.Resolve([]string{path})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(inputs) != 1 || inputs[0].Name != path {
		t.Fatalf("inputs = %v, want the one file", inputs)
	}

	content, err := inputs[0].Read(context.Background(), resty.New())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(content) != "content" {
		t.Errorf("content = %q, want %q", content, "content")
	}
}

func TestResolveMissingPath(t *testing.T) {
	if _, err := source.Resolve([]string{filepath.Join(t.TempDir(), "missing.md")}); err == nil {
		t.Fatal("Resolve() error = nil, want not-found error")
	}
}

func TestResolveEmptyGlob(t *testing.T) {
	if _, err := source.Resolve([]string{filepath.Join(t.TempDir(), "*.md")}); err == nil {
		t.Fatal("Resolve() error = nil, want empty-glob error")
	}
}

func TestReadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# Remote doc\n"))
	}))
	defer srv.Close()

	inputs, err := source.Resolve([]string{srv.URL + "/docs/report.md"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(inputs) != 1 || !inputs[0].Remote {
		t.Fatalf("inputs = %v, want one remote input", inputs)
	}
	if inputs[0].Name != "report.md" {
		t.Errorf("Name = %q, want report.md", inputs[0].Name)
	}

	client := resty.New()
	defer client.Close()
	content, err := inputs[0].Read(context.Background(), client)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(content) != "# Remote doc\n" {
		t.Errorf("content = %q", content)
	}
}

func TestReadRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	inputs, err := source.Resolve([]string{srv.URL + "/gone.md"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	client := resty.New()
	defer client.Close()
	if _, err := inputs[0].Read(context.Background(), client); err == nil {
		t.Fatal("Read() error = nil, want status error")
	}
}
