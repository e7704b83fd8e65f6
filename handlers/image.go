package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ImageHandler proxies poster and backdrop images with a disk cache, keeping
// the browser off third-party hosts.
type ImageHandler struct {
	cacheDir   string
	httpc      *http.Client
	mu         sync.Mutex
	inProgress map[string]chan struct{} // Prevent duplicate fetches
}

var allowedImageHosts = map[string]bool{
	"image.tmdb.org": true,
}

func NewImageHandler(cacheDir string) *ImageHandler {
	imgCacheDir := filepath.Join(cacheDir, "images")
	if err := os.MkdirAll(imgCacheDir, 0o755); err != nil {
		log.Printf("[image] could not create cache dir %s: %v", imgCacheDir, err)
	}

	return &ImageHandler{
		cacheDir: imgCacheDir,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
		},
		inProgress: make(map[string]chan struct{}),
	}
}

// Proxy handles GET /api/image/proxy?url=...
func (h *ImageHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		http.Error(w, "url parameter required", http.StatusBadRequest)
		return
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil || !allowedImageHosts[parsed.Host] || parsed.Scheme != "https" {
		http.Error(w, "URL not allowed", http.StatusForbidden)
		return
	}

	cachePath := filepath.Join(h.cacheDir, cacheKey(sourceURL))

	if h.serveFromCache(w, cachePath) {
		return
	}

	// Collapse concurrent fetches of the same URL.
	h.mu.Lock()
	if ch, exists := h.inProgress[cachePath]; exists {
		h.mu.Unlock()
		<-ch
		if h.serveFromCache(w, cachePath) {
			return
		}
		http.Error(w, "Failed to load image", http.StatusBadGateway)
		return
	}
	ch := make(chan struct{})
	h.inProgress[cachePath] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.inProgress, cachePath)
		h.mu.Unlock()
		close(ch)
	}()

	if err := h.fetch(r, sourceURL, cachePath); err != nil {
		log.Printf("[image] fetch %s failed: %v", sourceURL, err)
		http.Error(w, "Failed to load image", http.StatusBadGateway)
		return
	}

	if !h.serveFromCache(w, cachePath) {
		http.Error(w, "Failed to load image", http.StatusInternalServerError)
	}
}

func (h *ImageHandler) serveFromCache(w http.ResponseWriter, cachePath string) bool {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return false
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "public, max-age=2592000")
	w.Write(data)
	return true
}

func (h *ImageHandler) fetch(r *http.Request, sourceURL, cachePath string) error {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}

	resp, err := h.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return err
	}

	tmp := cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, cachePath)
}

func cacheKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}
