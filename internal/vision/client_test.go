package vision_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"memograph/internal/vision"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newClient(t *testing.T, handler http.HandlerFunc) *vision.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return vision.NewClient(vision.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}, vision.WithSleeper(func(time.Duration) {}))
}

func TestCaptionSendsImageAttachment(t *testing.T) {
	var sawImage atomic.Bool
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL *struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		for _, msg := range req.Messages {
			for _, part := range msg.Content {
				if part.Type == "image_url" && part.ImageURL != nil &&
					strings.HasPrefix(part.ImageURL.URL, "data:image/jpeg;base64,") {
					sawImage.Store(true)
				}
			}
		}
		w.Write([]byte(completionBody(`{"caption":"a lake at sunrise"}`)))
	})

	caption, err := client.Caption(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("Caption failed: %v", err)
	}
	if caption != "a lake at sunrise" {
		t.Fatalf("caption = %q", caption)
	}
	if !sawImage.Load() {
		t.Fatal("request carried no base64 image attachment")
	}
}

func TestSpeciesTrimsBlankEntries(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(`{"species":["Kingfisher","  ","Black-necked Crane"]}`)))
	})
	species, err := client.Species(context.Background(), writeImage(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(species) != 2 || species[0] != "Kingfisher" {
		t.Fatalf("species = %v", species)
	}
}

func TestDetectFacesToleratesCodeFence(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("```json\n{\"faces\": 3}\n```")))
	})
	faces, err := client.DetectFaces(context.Background(), writeImage(t))
	if err != nil {
		t.Fatal(err)
	}
	if faces != 3 {
		t.Fatalf("faces = %d, want 3", faces)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionBody(`{"labels":["mountain"]}`)))
	})

	labels, err := client.Labels(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if len(labels) != 1 || labels[0] != "mountain" {
		t.Fatalf("labels = %v", labels)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, server saw %d calls", calls.Load())
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if _, err := client.Caption(context.Background(), writeImage(t)); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, server saw %d calls", calls.Load())
	}
}

func TestCaptionMissingImage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a missing image")
	})
	if _, err := client.Caption(context.Background(), filepath.Join(t.TempDir(), "gone.jpg")); err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestHealthCheck(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(`{"ok":true}`)))
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}
