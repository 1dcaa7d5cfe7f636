package stats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fetcher downloads source documents over HTTP(S) or reads them from disk.
type Fetcher struct {
	Client *http.Client
	Log    *zap.Logger
}

func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Log:    log,
	}
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Download returns the raw bytes behind location. Any failure is a *FetchError.
func (f *Fetcher) Download(ctx context.Context, location string) ([]byte, error) {
	start := time.Now()
	f.Log.Debug("download", zap.String("source", location))

	var (
		data []byte
		err  error
	)
	if isRemote(location) {
		data, err = f.get(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, &FetchError{Source: location, Err: err}
	}

	f.Log.Info("downloaded",
		zap.String("source", location),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv, */*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
