package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// UploadChunk POSTs raw ciphertext to the ingest endpoint with a URL-query
// envelope, enforcing the 30-second per-chunk timeout independent of
// the client's default HTTP timeout.
func (c *Client) UploadChunk(ctx context.Context, fileID string, index int, parent, uploadKey, hash string, ciphertext []byte, timeout time.Duration) error {
	q := url.Values{}
	q.Set("uuid", fileID)
	q.Set("index", fmt.Sprintf("%d", index))
	q.Set("parent", parent)
	q.Set("uploadKey", uploadKey)
	q.Set("hash", hash)

	reqURL := fmt.Sprintf("%s/v3/upload?%s", c.IngestBase, q.Encode())

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(ciphertext))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{StatusCode: resp.StatusCode, Message: "chunk upload failed"}
	}
	return nil
}

// DownloadChunk GETs a chunk's ciphertext. Downloads are unauthenticated
// (downloads are unauthenticated).
func (c *Client) DownloadChunk(ctx context.Context, region, bucket, fileID string, index int) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s/%s/%s/%d", c.EgestBase, region, bucket, fileID, index)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Message: "chunk download failed"}
	}
	return io.ReadAll(resp.Body)
}
