package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	content := `{"name": "Lone Mirror",
		"materials": {"m": {"type": "metal", "albedo": "silver"}},
		"spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": "m"}]}`
	if err := os.WriteFile(filepath.Join(dir, "mirror.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create scene file: %v", err)
	}
	return NewServer(0, dir)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		expected  int
		expectErr bool
	}{
		{"default", "", 7, false},
		{"in range", "n=3", 3, false},
		{"too small", "n=0", 0, true},
		{"too large", "n=101", 0, true},
		{"not a number", "n=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseIntParam(values, "n", 7, 1, 100)
			if (err != nil) != tt.expectErr {
				t.Fatalf("Expected error %v, got %v", tt.expectErr, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response struct {
		Groups []struct {
			Name   string `json:"name"`
			Scenes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"scenes"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected built-in and file groups, got %d", len(response.Groups))
	}
	if response.Groups[1].Scenes[0].Name != "Lone Mirror" {
		t.Errorf("Expected the scene file in the second group, got %+v", response.Groups[1])
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/scene-config?scene=default")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response struct {
		Defaults struct {
			Width           int `json:"width"`
			Height          int `json:"height"`
			SamplesPerPixel int `json:"samplesPerPixel"`
		} `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if response.Defaults.Width != 400 || response.Defaults.Height != 225 {
		t.Errorf("Expected 400x225, got %dx%d", response.Defaults.Width, response.Defaults.Height)
	}

	if rec := get(t, s, "/api/scene-config?scene=nonexistent"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown scene, got %d", rec.Code)
	}
	// Arbitrary paths are not loadable, only listed scene files
	if rec := get(t, s, "/api/scene-config?scene=../secret.json"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unlisted scene file, got %d", rec.Code)
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	t.Run("center hits the sphere", func(t *testing.T) {
		rec := get(t, s, "/api/inspect?scene=dark-sphere&width=64&x=32&y=32")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var response InspectResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if !response.Hit {
			t.Fatal("Expected a hit through the image center")
		}
		if response.MaterialType != "lambertian" {
			t.Errorf("Expected lambertian, got %q", response.MaterialType)
		}
		if !response.FrontFace {
			t.Error("Expected a front face hit")
		}
		if response.Distance < 0.49 || response.Distance > 0.52 {
			t.Errorf("Expected distance near 0.5, got %f", response.Distance)
		}
	})

	t.Run("corner sees the sky", func(t *testing.T) {
		rec := get(t, s, "/api/inspect?scene=dark-sphere&width=64&x=0&y=0")
		var response InspectResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if response.Hit {
			t.Error("Expected the corner ray to miss")
		}
		// Looking up and left, the sky is bluer than white
		if response.Background[0] >= 1 || response.Background[2] < 0.999 {
			t.Errorf("Expected a light blue sky, got %v", response.Background)
		}
	})

	t.Run("metal from scene file", func(t *testing.T) {
		id := url.QueryEscape(filepath.Join(s.scenesDir, "mirror.json"))
		rec := get(t, s, "/api/inspect?width=64&x=32&y=18&scene="+id)
		var response InspectResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if response.MaterialType != "metal" {
			t.Errorf("Expected metal, got %q (%s)", response.MaterialType, rec.Body.String())
		}
	})

	errorCases := []string{
		"/api/inspect?scene=dark-sphere&width=64&x=64&y=0",
		"/api/inspect?scene=dark-sphere&width=64&x=-1&y=0",
		"/api/inspect?scene=dark-sphere&width=64&x=a&y=0",
		"/api/inspect?scene=dark-sphere&width=5&x=0&y=0",
		"/api/inspect?scene=nonexistent&x=0&y=0",
	}
	for _, target := range errorCases {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

// parseSSE splits an event stream into (event, data) pairs
func parseSSE(body string) [][2]string {
	var events [][2]string
	for _, block := range strings.Split(body, "\n\n") {
		var event, data string
		for _, line := range strings.Split(block, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				event = v
			} else if v, ok := strings.CutPrefix(line, "data: "); ok {
				data = v
			}
		}
		if event != "" {
			events = append(events, [2]string{event, data})
		}
	}
	return events
}

func TestHandleRender(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render?scene=dark-sphere&width=16&maxSamples=4&maxPasses=2&maxDepth=3")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected an event stream, got %q", ct)
	}

	var updates []ProgressUpdate
	var last string
	for _, ev := range parseSSE(rec.Body.String()) {
		last = ev[0]
		if ev[0] != "progress" {
			continue
		}
		var update ProgressUpdate
		if err := json.Unmarshal([]byte(ev[1]), &update); err != nil {
			t.Fatalf("Invalid progress event: %v", err)
		}
		updates = append(updates, update)
	}

	if last != "complete" {
		t.Errorf("Expected the stream to end with 'complete', got %q", last)
	}
	if len(updates) != 2 {
		t.Fatalf("Expected 2 progress events, got %d", len(updates))
	}

	final := updates[1]
	if !final.IsComplete || final.Stats.MinSamples != 4 {
		t.Errorf("Expected a complete final pass at 4 samples, got %+v", final.Stats)
	}
	if final.Width != 16 || final.Height != 16 {
		t.Errorf("Expected 16x16, got %dx%d", final.Width, final.Height)
	}
	png, err := base64.StdEncoding.DecodeString(final.ImageData)
	if err != nil {
		t.Fatalf("Image data is not base64: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("Image data should be a PNG")
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render?scene=nonexistent")
	events := parseSSE(rec.Body.String())
	if len(events) != 1 || events[0][0] != "error" {
		t.Errorf("Expected a single error event, got %v", events)
	}
}

// failingWriter is a streaming ResponseWriter whose client has gone away
type failingWriter struct {
	header http.Header
}

func (f *failingWriter) Header() http.Header {
	if f.header == nil {
		f.header = http.Header{}
	}
	return f.header
}

func (f *failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }
func (f *failingWriter) WriteHeader(int) {}
func (f *failingWriter) Flush() {}

func TestHandleRender_SendFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	s := newTestServer(t)
	tests := []struct {
		name     string
		send     func(w http.ResponseWriter)
		expected string
	}{
		{
			name: "invalid request",
			send: func(w http.ResponseWriter) {
				s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/render?width=abc", nil))
			},
			expected: "Error sending error event: connection reset",
		},
		{
			name: "unknown scene",
			send: func(w http.ResponseWriter) {
				s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/render?scene=nonexistent", nil))
			},
			expected: "Error sending error event: connection reset",
		},
		{
			name: "console message",
			send: func(w http.ResponseWriter) {
				sse, err := newSSEWriter(w)
				if err != nil {
					t.Fatalf("newSSEWriter failed: %v", err)
				}
				sse.sendJSONOrLog("console", ConsoleMessage{Message: "hello"})
			},
			expected: "Error sending console event: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.send(&failingWriter{})
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected log to contain %q, got %q", tt.expected, buf.String())
			}
		})
	}
}
