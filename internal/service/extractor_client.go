package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// MaxExtractedChars caps the text taken from one attachment; anything beyond
// it is cut and marked.
const MaxExtractedChars = 50000

// TruncationMarker is appended to extracted text that was cut at the cap.
const TruncationMarker = "\n[... text truncated ...]"

// ExtractorClient calls the external file-text extraction service
type ExtractorClient struct {
	baseURL    string
	httpClient *http.Client
}

// extractResponse is the extraction service's reply
type extractResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// NewExtractorClient creates a client for the extraction service at baseURL
func NewExtractorClient(baseURL string) *ExtractorClient {
	return &ExtractorClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExtractText uploads one file and returns its extracted plain text. The
// service answering with a non-success status means the file had no
// extractable text; that error is per-file and never blocks other
// attachments. Text beyond MaxExtractedChars is truncated with a visible
// marker.
func (c *ExtractorClient) ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/extract", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Extractor Client] ERROR: request failed for %s: %v", name, err)
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read extraction response: %w", err)
	}
	if resp.StatusCode >= 400 {
		log.Printf("[Extractor Client] ERROR: service returned %d for %s", resp.StatusCode, name)
		return "", fmt.Errorf("no extractable text in %s", name)
	}

	var extracted extractResponse
	if err := json.Unmarshal(respBody, &extracted); err != nil {
		return "", fmt.Errorf("failed to parse extraction response: %w", err)
	}

	text := extracted.Text
	if len(text) > MaxExtractedChars {
		text = text[:MaxExtractedChars] + TruncationMarker
	}
	return text, nil
}
