package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"venturelink/pkg/types"
)

// SupabaseBucket handles objects in one Supabase Storage bucket
type SupabaseBucket struct {
	baseURL    string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

// NewSupabaseBucket creates a new Supabase Storage client for a bucket
func NewSupabaseBucket(projectID, apiKey, bucketName string) *SupabaseBucket {
	return &SupabaseBucket{
		baseURL:    fmt.Sprintf("https://%s.supabase.co/storage/v1", projectID),
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SupabaseBucket) objectURL(path string) string {
	return fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucketName, path)
}

func (s *SupabaseBucket) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("apikey", s.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return s.httpClient.Do(req)
}

// Download fetches an object's bytes
func (s *SupabaseBucket) Download(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, s.objectURL(path), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		// storage-api reports missing objects as 400 with an embedded 404
		return nil, fmt.Errorf("%s/%s: %w", s.bucketName, path, types.ErrObjectNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download failed with status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// Upload writes an object, replacing any existing object at the path
func (s *SupabaseBucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Move renames an object within the bucket
func (s *SupabaseBucket) Move(ctx context.Context, from, to string) error {
	payload, err := json.Marshal(map[string]string{
		"bucketId":       s.bucketName,
		"sourceKey":      from,
		"destinationKey": to,
	})
	if err != nil {
		return fmt.Errorf("failed to encode move request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, s.baseURL+"/object/move", bytes.NewReader(payload), "application/json")
	if err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("move failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Delete removes an object
func (s *SupabaseBucket) Delete(ctx context.Context, path string) error {
	resp, err := s.do(ctx, http.MethodDelete, s.objectURL(path), nil, "")
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// SignedUploadURL returns a URL the client may PUT the object to. Supabase
// fixes the lifetime of upload URLs at two hours, so ttl is ignored.
func (s *SupabaseBucket) SignedUploadURL(ctx context.Context, path, contentType string, ttl time.Duration) (string, error) {
	signURL := fmt.Sprintf("%s/object/upload/sign/%s/%s", s.baseURL, s.bucketName, path)

	var out struct {
		URL string `json:"url"`
	}
	if err := s.sign(ctx, signURL, nil, &out); err != nil {
		return "", err
	}

	return s.baseURL + out.URL, nil
}

// SignedDownloadURL returns a time-limited URL for reading the object
func (s *SupabaseBucket) SignedDownloadURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	signURL := fmt.Sprintf("%s/object/sign/%s/%s", s.baseURL, s.bucketName, path)

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	body := map[string]int{"expiresIn": int(ttl.Seconds())}
	if err := s.sign(ctx, signURL, body, &out); err != nil {
		return "", err
	}

	return s.baseURL + out.SignedURL, nil
}

func (s *SupabaseBucket) sign(ctx context.Context, url string, body any, out any) error {
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode sign request: %w", err)
		}
	}

	resp, err := s.do(ctx, http.MethodPost, url, bytes.NewReader(payload), "application/json")
	if err != nil {
		return fmt.Errorf("failed to sign url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sign failed with status %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sign response: %w", err)
	}

	return nil
}
