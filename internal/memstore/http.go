package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPStore talks to a remote memory service over its REST API
// (mem0-compatible: /v1/memories endpoints, token auth). Record IDs
// and timestamps are assigned by the service.
type HTTPStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPStore creates a client for the memory service at baseURL. The
// API key may be empty for unauthenticated deployments.
func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	if baseURL == "" {
		baseURL = "http://localhost:8888"
	}
	return &HTTPStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// httpRecord is the service's wire shape; the text field is named
// "memory" on the wire.
type httpRecord struct {
	ID        string            `json:"id"`
	Memory    string            `json:"memory"`
	UserID    string            `json:"user_id"`
	AppID     string            `json:"app_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (w httpRecord) toRecord() Record {
	return Record{
		ID:        w.ID,
		Content:   w.Memory,
		UserID:    w.UserID,
		AppID:     w.AppID,
		Metadata:  w.Metadata,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toRecords(wire []httpRecord) []Record {
	records := make([]Record, len(wire))
	for i, w := range wire {
		records[i] = w.toRecord()
	}
	return records
}

// do issues one request and decodes the response into out (when out is
// non-nil). A 404 maps to NotFoundError, other failures to
// UnavailableError.
func (s *HTTPStore) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &SerializationError{Operation: "encode", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return &UnavailableError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Token "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Cause: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{ID: path}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &UnavailableError{
			Cause: fmt.Errorf("memory service returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &SerializationError{Operation: "decode", Cause: err}
		}
	}
	return nil
}

// Add stores a new record via the service.
func (s *HTTPStore) Add(ctx context.Context, messages []Message, opts AddOptions) (*Record, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("add requires at least one message")
	}
	reqBody := map[string]any{
		"messages": messages,
		"user_id":  opts.UserID,
		"app_id":   opts.AppID,
	}
	if len(opts.Metadata) > 0 {
		reqBody["metadata"] = opts.Metadata
	}

	var wire httpRecord
	if err := s.do(ctx, http.MethodPost, "/v1/memories", reqBody, &wire); err != nil {
		return nil, err
	}
	rec := wire.toRecord()
	return &rec, nil
}

// Search asks the service for records relevant to the query.
func (s *HTTPStore) Search(ctx context.Context, query string, filter Filter) ([]Record, error) {
	reqBody := map[string]any{
		"query":   query,
		"user_id": filter.UserID,
		"app_id":  filter.AppID,
	}
	if filter.Limit > 0 {
		reqBody["limit"] = filter.Limit
	}
	if len(filter.Metadata) > 0 {
		reqBody["metadata"] = filter.Metadata
	}

	var wire []httpRecord
	if err := s.do(ctx, http.MethodPost, "/v1/memories/search", reqBody, &wire); err != nil {
		return nil, err
	}
	return toRecords(wire), nil
}

// GetAll fetches every record in the filter's scope.
func (s *HTTPStore) GetAll(ctx context.Context, filter Filter) ([]Record, error) {
	path := fmt.Sprintf("/v1/memories?user_id=%s&app_id=%s", filter.UserID, filter.AppID)

	var wire []httpRecord
	if err := s.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	records := toRecords(wire)
	// The service is not required to order by creation time; metadata
	// filtering happens here as well.
	out := records[:0]
	for i := range records {
		if matchesFilter(&records[i], filter) {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// Get retrieves a record by ID.
func (s *HTTPStore) Get(ctx context.Context, id string) (*Record, error) {
	var wire httpRecord
	if err := s.do(ctx, http.MethodGet, "/v1/memories/"+id, nil, &wire); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	rec := wire.toRecord()
	return &rec, nil
}

// Update replaces a record's content.
func (s *HTTPStore) Update(ctx context.Context, id string, content string) (*Record, error) {
	reqBody := map[string]any{"memory": content}

	var wire httpRecord
	if err := s.do(ctx, http.MethodPut, "/v1/memories/"+id, reqBody, &wire); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	rec := wire.toRecord()
	return &rec, nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (s *HTTPStore) Close() error {
	return nil
}
