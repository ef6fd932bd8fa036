// Package document provides fetching, text extraction, and chunking of
// remote documents.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/docqa/docqa/internal/model"
)

// Fetch timeouts.
const (
	// FetchTimeout is the total request timeout for a document download.
	FetchTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// Document processing errors.
var (
	// ErrUnsupportedType indicates the URL does not point to a supported format.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrTooLarge indicates the document exceeds the configured size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
	// ErrEmptyDocument indicates no text could be extracted.
	ErrEmptyDocument = errors.New("document is empty or corrupted")
	// ErrFetchFailed indicates the document could not be downloaded.
	ErrFetchFailed = errors.New("failed to fetch document")
)

// Fetched holds a downloaded document body and its detected type.
type Fetched struct {
	Data []byte
	Type model.DocumentType
}

// Fetcher downloads documents over HTTP(S).
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher with a size cap in bytes.
func NewFetcher(maxBytes int64, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:   newHTTPClient(),
		maxBytes: maxBytes,
		logger:   logger.With("component", "document.fetcher"),
	}
}

// newHTTPClient creates an HTTP client configured for document download.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: FetchTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Fetch downloads the document at the given URL.
// The type is detected from the URL path extension, falling back to the
// Content-Type response header.
func (f *Fetcher) Fetch(ctx context.Context, docURL string) (*Fetched, error) {
	docType, typeErr := DetectType(docURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "DocQA/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	if typeErr != nil {
		// No usable extension in the URL, trust the Content-Type header.
		docType, err = typeFromContentType(resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
	}

	// Read one byte past the limit to detect oversize bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body larger than %d bytes", ErrTooLarge, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	f.logger.Debug("document fetched",
		"type", string(docType),
		"bytes", len(data),
	)

	return &Fetched{Data: data, Type: docType}, nil
}

// DetectType determines the document type from the URL path extension.
// The query string is ignored: signed blob URLs carry their extension in
// the path.
func DetectType(docURL string) (model.DocumentType, error) {
	parsed, err := url.Parse(docURL)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable URL", ErrUnsupportedType)
	}

	switch strings.ToLower(path.Ext(parsed.Path)) {
	case ".pdf":
		return model.DocumentTypePDF, nil
	case ".doc", ".docx":
		return model.DocumentTypeDocx, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, path.Ext(parsed.Path))
	}
}

// typeFromContentType maps a Content-Type header to a document type.
func typeFromContentType(header string) (model.DocumentType, error) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("%w: no extension and unparseable Content-Type", ErrUnsupportedType)
	}

	switch mediaType {
	case "application/pdf":
		return model.DocumentTypePDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword":
		return model.DocumentTypeDocx, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
}
