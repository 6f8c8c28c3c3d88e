package feed

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"stocksync/internal/logger"
	"stocksync/internal/model"
	"stocksync/internal/syncerr"
)

const DefaultURL = "https://timeworld.ru/upload/files/ostatki.zip"

// DefaultEntry is the spreadsheet the supplier ships inside the archive.
const DefaultEntry = "ostatki.xls"

var errNoSpreadsheet = errors.New("archive holds no spreadsheet")

var spreadsheetExts = map[string]bool{
	".xls":  true,
	".xlsx": true,
	".htm":  true,
	".html": true,
}

// Fetcher downloads and decodes the supplier feed. The archive is handled in
// memory, nothing touches the filesystem.
type Fetcher struct {
	URL    string
	Entry  string
	Client *http.Client
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL:    url,
		Entry:  DefaultEntry,
		Client: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]model.Record, error) {
	log := logger.GetLogger().WithComponent("feed")
	start := time.Now()

	body, err := f.download(ctx)
	if err != nil {
		return nil, err
	}

	name, data, err := f.extract(body)
	if err != nil {
		return nil, err
	}

	rows, err := ReadSheet(data)
	if err != nil {
		return nil, &syncerr.FormatError{Source: name, Err: err}
	}

	records, err := ParseRows(name, rows)
	if err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"url":         f.URL,
		"entry":       name,
		"rows":        len(rows),
		"records":     len(records),
		"archive_len": len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("feed downloaded")
	return records, nil
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &syncerr.TransportError{Op: "GET", URL: f.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &syncerr.TransportError{Op: "GET", URL: f.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &syncerr.TransportError{Op: "GET", URL: f.URL, Err: err}
	}
	return body, nil
}

// extract returns the name and content of the spreadsheet entry. The
// configured entry wins; otherwise the archive must hold exactly one
// spreadsheet.
func (f *Fetcher) extract(archive []byte) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", nil, &syncerr.FormatError{Source: f.URL, Err: fmt.Errorf("open zip: %w", err)}
	}

	var candidates []*zip.File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if f.Entry != "" && path.Base(zf.Name) == f.Entry {
			candidates = []*zip.File{zf}
			break
		}
		if spreadsheetExts[strings.ToLower(path.Ext(zf.Name))] {
			candidates = append(candidates, zf)
		}
	}

	switch len(candidates) {
	case 0:
		return "", nil, &syncerr.FormatError{Source: f.URL, Err: errNoSpreadsheet}
	case 1:
	default:
		return "", nil, syncerr.Formatf(f.URL, "archive holds %d spreadsheets and none is named %s", len(candidates), f.Entry)
	}

	zf := candidates[0]
	rc, err := zf.Open()
	if err != nil {
		return "", nil, &syncerr.FormatError{Source: zf.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, &syncerr.FormatError{Source: zf.Name, Err: err}
	}
	return zf.Name, data, nil
}
