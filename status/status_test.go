package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicekit/plugin"
)

// stubPlugin is a minimal plugin for exercising the HTTP surface.
type stubPlugin struct {
	name   string
	active bool
	items  []plugin.DataItem
}

func (s *stubPlugin) Name() string { return s.name }
func (s *stubPlugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: s.name, DisplayName: s.name}
}
func (s *stubPlugin) IsAvailable(ctx context.Context) bool { return true }
func (s *stubPlugin) Activate(ctx context.Context, hooks *plugin.Hooks) error {
	s.active = true
	return nil
}
func (s *stubPlugin) Deactivate(ctx context.Context) error {
	s.active = false
	return nil
}
func (s *stubPlugin) UpdateOptions(ctx context.Context, opts plugin.Options, hooks *plugin.Hooks) error {
	return nil
}
func (s *stubPlugin) State() plugin.State { return plugin.State{Active: s.active} }
func (s *stubPlugin) ListData(ctx context.Context) ([]plugin.DataItem, error) {
	return s.items, nil
}
func (s *stubPlugin) DataSize(ctx context.Context) (int64, error) {
	var total int64
	for _, it := range s.items {
		total += it.SizeBytes
	}
	return total, nil
}
func (s *stubPlugin) DeleteDataItem(ctx context.Context, id string) error { return nil }
func (s *stubPlugin) DeleteAllData(ctx context.Context) error {
	s.items = nil
	return nil
}

func newRouter(t *testing.T) (*gin.Engine, *plugin.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := plugin.NewRegistry()
	for _, p := range []*stubPlugin{
		{name: "whisper", items: []plugin.DataItem{{ID: "ggml-base.bin", SizeBytes: 42}}},
		{name: "vosk"},
	} {
		if err := reg.Register(p); err != nil {
			t.Fatal(err)
		}
	}
	m := plugin.NewManager(reg)

	r := gin.New()
	NewHandler(m, "voicekit").Register(r)
	return r, m
}

func doGET(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON from %s: %v", path, err)
	}
	return w, body
}

func TestHealthReportsDegradedWithoutActivePlugin(t *testing.T) {
	r, m := newRouter(t)

	w, body := doGET(t, r, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}

	if err := m.SetActive(context.Background(), "whisper", nil, nil); err != nil {
		t.Fatal(err)
	}
	_, body = doGET(t, r, "/healthz")
	if body["status"] != "healthy" || body["active_plugin"] != "whisper" {
		t.Errorf("body = %v", body)
	}
}

func TestListPluginsMarksActive(t *testing.T) {
	r, m := newRouter(t)
	if err := m.SetActive(context.Background(), "vosk", nil, nil); err != nil {
		t.Fatal(err)
	}

	w, body := doGET(t, r, "/api/v1/plugins")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	plugins, ok := body["plugins"].([]any)
	if !ok || len(plugins) != 2 {
		t.Fatalf("plugins = %v", body["plugins"])
	}
	first := plugins[0].(map[string]any)
	second := plugins[1].(map[string]any)
	if first["name"] != "whisper" || first["active"] != false {
		t.Errorf("first = %v", first)
	}
	if second["name"] != "vosk" || second["active"] != true {
		t.Errorf("second = %v", second)
	}
}

func TestActivePluginEndpoint(t *testing.T) {
	r, m := newRouter(t)

	w, _ := doGET(t, r, "/api/v1/plugins/active")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d without active plugin, want 404", w.Code)
	}

	if err := m.SetActive(context.Background(), "whisper", nil, nil); err != nil {
		t.Fatal(err)
	}
	w, body := doGET(t, r, "/api/v1/plugins/active")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["name"] != "whisper" || body["active"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestDataInfoEndpoint(t *testing.T) {
	r, _ := newRouter(t)

	w, body := doGET(t, r, "/api/v1/plugins/data")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	plugins, ok := body["plugins"].([]any)
	if !ok || len(plugins) != 2 {
		t.Fatalf("plugins = %v", body["plugins"])
	}
	whisper := plugins[0].(map[string]any)
	if whisper["plugin_name"] != "whisper" || whisper["data_size"] != float64(42) || whisper["item_count"] != float64(1) {
		t.Errorf("whisper info = %v", whisper)
	}
}

func TestVersionEndpoint(t *testing.T) {
	r, _ := newRouter(t)
	w, body := doGET(t, r, "/version")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["version"] == "" {
		t.Error("version field empty")
	}
}
