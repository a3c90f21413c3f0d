package bootstrap

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arraypress/flyouts/core/hostfn"
)

func writeTestFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `
manager: shop
panels:
  - id: order
    title: Order
    callbacks:
      load: order.load
      save: order.save
    fields:
      - key: number
        type: text
        label: Number
`
	if err := os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := `
panels:
  dir: ` + dir + `
logging:
  level: error
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCallbacks() *hostfn.Registry {
	fns := hostfn.New()
	fns.RegisterLoad("order.load", func(id string) (any, error) {
		return map[string]any{"number": "INV-" + id}, nil
	})
	fns.RegisterSave("order.save", func(id string, data map[string]any) (any, error) {
		return true, nil
	})
	return fns
}

func TestNew_ServesConfiguredPanels(t *testing.T) {
	a, err := New(Options{
		ConfigPath: writeTestFiles(t),
		Callbacks:  testCallbacks(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if !a.Registry.Has("shop") {
		t.Fatal("shop namespace not registered")
	}

	req := httptest.NewRequest("POST", "/flyouts/load",
		strings.NewReader(`{"manager":"shop","flyout":"order","item_id":7}`))
	rec := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["success"] != true {
		t.Errorf("body = %v", body)
	}
	html, _ := body["html"].(string)
	if !strings.Contains(html, "INV-7") {
		t.Errorf("html missing loaded value: %s", html)
	}
}

func TestNew_Healthz(t *testing.T) {
	a, err := New(Options{ConfigPath: writeTestFiles(t), Callbacks: testCallbacks()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNew_ManifestWithoutCallbacks(t *testing.T) {
	if _, err := New(Options{ConfigPath: writeTestFiles(t)}); err == nil {
		t.Error("New() succeeded without a callback registry")
	}
}

func TestNew_EnvOnly(t *testing.T) {
	t.Setenv("FLYOUTS_SERVER_PORT", "0")

	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Dispatcher == nil || a.HTTPServer == nil {
		t.Error("incomplete assembly")
	}
}

func TestHolderLogsThroughConfiguredLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The logger captures os.Stderr at construction time.
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	defer func() { os.Stderr = oldStderr }()

	a, err := New(Options{ConfigPath: path})
	if err != nil {
		os.Stderr = oldStderr
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if err := a.Holder.Reload(); err != nil {
		os.Stderr = oldStderr
		t.Fatalf("Reload() error = %v", err)
	}

	w.Close()
	os.Stderr = oldStderr
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "reloading configuration") {
		t.Errorf("holder reload not logged, output:\n%s", out)
	}
}

func TestPanelReload(t *testing.T) {
	path := writeTestFiles(t)
	a, err := New(Options{ConfigPath: path, Callbacks: testCallbacks()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	dir := filepath.Dir(path)
	second := `
manager: crm
panels:
  - id: contact
    title: Contact
    callbacks:
      load: order.load
    fields:
      - key: name
        type: text
`
	if err := os.WriteFile(filepath.Join(dir, "crm.yaml"), []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := a.Holder.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !a.Registry.Has("crm") {
		t.Error("crm namespace not registered after reload")
	}
}
