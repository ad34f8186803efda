package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ScanResult is the parsed reply of the receipt OCR service.
type ScanResult struct {
	Text   string `json:"text"`
	Amount string `json:"amount,omitempty"`
	Date   string `json:"date,omitempty"`
}

// OCRClient extracts text from a receipt image.
type OCRClient interface {
	Scan(ctx context.Context, filename string, image io.Reader) (*ScanResult, error)
}

// HTTPOCRClient calls an external OCR HTTP service.
type HTTPOCRClient struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewOCRClient(url, apiKey string, timeout time.Duration) *HTTPOCRClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPOCRClient{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPOCRClient) Scan(ctx context.Context, filename string, image io.Reader) (*ScanResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr service returned %d", resp.StatusCode)
	}

	var result ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	return &result, nil
}
