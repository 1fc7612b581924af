package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

// Fetcher retrieves raw documents, serving repeats from the on-disk cache.
type Fetcher struct {
	store    *Store
	client   *http.Client
	cacheDir string
	logger   *slog.Logger
}

func NewFetcher(store *Store, cacheDir string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		store:    store,
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		logger:   logger,
	}
}

// Get returns a local path for the document, fetching and indexing it on a
// cache miss. An index row whose blob has gone missing is treated as a miss
// and re-fetched.
func (f *Fetcher) Get(ctx context.Context, identifier, url string) (string, error) {
	if blob, ok, err := f.store.Lookup(ctx, identifier); err != nil {
		return "", err
	} else if ok {
		if _, statErr := os.Stat(blob); statErr == nil {
			f.logger.Debug("fetch.hit", "identifier", identifier, "blob", blob)
			return blob, nil
		}
		f.logger.Warn("fetch.blob_missing", "identifier", identifier, "blob", blob)
	}
	return f.download(ctx, identifier, url)
}

func (f *Fetcher) download(ctx context.Context, identifier, url string) (string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", identifier, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", common.NewAppError("FETCH_FAILED", "retrieve "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", common.NewAppError("FETCH_FAILED",
			fmt.Sprintf("retrieve %s: status %d", url, resp.StatusCode), common.ErrRetrieval)
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	blob := filepath.Join(f.cacheDir, blobName(identifier, url))

	out, err := os.Create(blob)
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", blob, err)
	}
	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, h), resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(blob)
		return "", common.NewAppError("FETCH_FAILED", "write blob for "+identifier, err)
	}

	sha := hex.EncodeToString(h.Sum(nil))
	if err := f.store.Save(ctx, identifier, url, blob, sha); err != nil {
		return "", err
	}
	f.logger.Info("fetch.miss",
		"identifier", identifier,
		"bytes", size,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return blob, nil
}

// blobName keys blobs by identifier hash, keeping the source extension so
// downstream tools can sniff the format.
func blobName(identifier, url string) string {
	sum := sha256.Sum256([]byte(identifier))
	name := hex.EncodeToString(sum[:16])
	if ext := path.Ext(url); ext != "" && len(ext) <= 5 {
		name += ext
	}
	return name
}
