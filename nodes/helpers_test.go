package nodes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hdelmont/mediagraph/config"
	"github.com/hdelmont/mediagraph/imaging"
	"github.com/hdelmont/mediagraph/media"
)

// testDeps builds a dependency set with a temp output directory and a fast
// poll interval. mutate tweaks the config before wiring.
func testDeps(t *testing.T, mutate func(cfg *config.Config)) *Deps {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Fal.APIKey = "test-key"
	cfg.Fal.PollInterval = 5 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	return NewDeps(cfg, zap.NewNop())
}

// withFakeExecutor swaps the deps' ffmpeg for a recording fake that
// fabricates output files.
func withFakeExecutor(d *Deps) *fakeExecutor {
	exec := &fakeExecutor{}
	d.Runner = media.NewRunner("ffmpeg", media.WithExecutor(exec))
	d.Stitcher = media.NewStitcher(d.Runner, d.Media, d.Config.OutputDir, d.Logger)
	return exec
}

type fakeExecutor struct {
	calls [][]string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	f.calls = append(f.calls, args)
	// Last argument is always the output path; fabricate it so downstream
	// orchestration proceeds.
	if len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("fabricated"), 0o644); err != nil {
			return "", err
		}
	}
	return "", nil
}

// falServer fakes the fal.ai queue and storage APIs: one submit endpoint
// capturing the payload, an immediately-COMPLETED status, a settable
// response document, and the upload flow. The document may reference
// fs.URL+"/img" to serve a real PNG.
type falServer struct {
	*httptest.Server
	routes    *http.ServeMux
	doc       map[string]any
	submitted map[string]any
	submitApp string
}

// mux exposes the server's routes so tests can add media endpoints.
func (fs *falServer) mux() *http.ServeMux {
	return fs.routes
}

func newFalServer(t *testing.T) *falServer {
	t.Helper()
	fs := &falServer{}

	png, err := imaging.NewTensor(1, 8, 8).EncodePNG(0)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "COMPLETED"})
	})
	mux.HandleFunc("/response", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fs.doc)
	})
	mux.HandleFunc("/img", func(w http.ResponseWriter, r *http.Request) {
		w.Write(png)
	})
	mux.HandleFunc("/storage/upload/initiate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"upload_url": fs.URL + "/put",
			"file_url":   fs.URL + "/stored.png",
		})
	})
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fs.submitApp = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fs.submitted))
		json.NewEncoder(w).Encode(map[string]any{
			"request_id":   "req-1",
			"status_url":   fs.URL + "/status",
			"response_url": fs.URL + "/response",
		})
	})

	fs.routes = mux
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// falDeps wires a test dependency set against the fake fal server.
func falDeps(t *testing.T, fs *falServer) *Deps {
	return testDeps(t, func(cfg *config.Config) {
		cfg.Fal.QueueBaseURL = fs.URL
		cfg.Fal.RestBaseURL = fs.URL
	})
}

func testImage(w, h int) *imaging.Tensor {
	return imaging.NewTensor(1, h, w)
}
