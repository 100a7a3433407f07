// Package fetch reads raw documents for tagging from local files, standard
// input, or http(s) URLs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chriscorrea/tagger/internal/errs"
)

// MaxDocumentBytes caps a single document regardless of source.
const MaxDocumentBytes = 20 * 1024 * 1024

// RequestTimeout bounds a whole HTTP fetch.
const RequestTimeout = 30 * time.Second

var (
	dialTimeout           = RequestTimeout / 6
	tlsTimeout            = RequestTimeout / 6
	responseHeaderTimeout = RequestTimeout / 2
)

// Raw is a fetched document before text extraction.
type Raw struct {
	Source  string
	Body    []byte
	HTML    bool
	BaseURL *url.URL // set for URL sources
}

// limitedReadCloser fails once more than N bytes have been read
type limitedReadCloser struct {
	io.ReadCloser
	N      int64
	source string
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, fmt.Errorf("%w: content from %q exceeds %d bytes", errs.ErrData, l.source, MaxDocumentBytes)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// httpClient is shared and safe for concurrent use.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   tlsTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
	},
}

// Open returns a reader for source: "-" is standard input, http:// and
// https:// are fetched, anything else is a local path.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case source == "-":
		return &limitedReadCloser{ReadCloser: os.Stdin, N: MaxDocumentBytes, source: "stdin"}, nil
	case isURL(source):
		return openURL(ctx, source)
	default:
		return openFile(source)
	}
}

// Read fetches source completely and reports whether it looks like HTML,
// judged by file extension first and by content sniffing otherwise.
func Read(ctx context.Context, source string) (Raw, error) {
	rc, err := Open(ctx, source)
	if err != nil {
		return Raw{}, err
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to read %q: %w", source, err)
	}

	raw := Raw{Source: source, Body: body, HTML: IsHTML(source, body)}
	if isURL(source) {
		if u, err := url.Parse(source); err == nil {
			raw.BaseURL = u
		}
	}
	return raw, nil
}

// IsHTML reports whether a document named name with the given content should
// go through HTML extraction.
func IsHTML(name string, body []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	case ".txt", ".text", ".md":
		return false
	}
	return strings.HasPrefix(http.DetectContentType(body), "text/html")
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func openURL(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request for URL %q: %v", errs.ErrData, rawURL, err)
	}
	req.Header.Set("User-Agent", "tagger/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch URL %q: %v", errs.ErrCollaboratorUnavailable, rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: fetching %q returned status %d", errs.ErrData, rawURL, resp.StatusCode)
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size > MaxDocumentBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %q is too large (%d bytes > %d bytes limit)", errs.ErrData, rawURL, size, MaxDocumentBytes)
		}
	}

	return &limitedReadCloser{ReadCloser: resp.Body, N: MaxDocumentBytes, source: rawURL}, nil
}

func openFile(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: file %q does not exist", errs.ErrData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory", errs.ErrData, path)
	}
	if info.Size() > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: file %q is too large (%d bytes > %d bytes limit)", errs.ErrData, path, info.Size(), MaxDocumentBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	return f, nil
}
