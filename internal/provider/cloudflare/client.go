package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.cloudflare.com/client/v4"

var (
	// ErrNoAuth means neither authentication mode was configured.
	ErrNoAuth = errors.New("cloudflare: no authentication configured")
	// ErrAmbiguousAuth means both authentication modes were configured.
	ErrAmbiguousAuth = errors.New("cloudflare: both api_token and api_key configured")
)

// Auth selects the Cloudflare authentication mode. Exactly one of Token or
// the Email/Key pair must be set.
type Auth struct {
	Token string
	Email string
	Key   string
}

func AuthToken(token string) Auth {
	return Auth{Token: token}
}

func AuthKey(email, key string) Auth {
	return Auth{Email: email, Key: key}
}

func (a Auth) validate() error {
	hasToken := a.Token != ""
	hasKey := a.Email != "" || a.Key != ""

	switch {
	case hasToken && hasKey:
		return ErrAmbiguousAuth
	case hasToken:
		return nil
	case a.Email != "" && a.Key != "":
		return nil
	default:
		return ErrNoAuth
	}
}

func (a Auth) apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
		return
	}
	req.Header.Set("X-Auth-Email", a.Email)
	req.Header.Set("X-Auth-Key", a.Key)
}

// APIError is a response Cloudflare itself marked unsuccessful.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return "cloudflare api call failed"
	}
	return fmt.Sprintf("cloudflare api call failed: %s", strings.Join(e.Messages, "; "))
}

// Client is a minimal Cloudflare REST client covering the zone and DNS
// record endpoints this tool consumes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       Auth
}

type Option func(c *Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

func NewClient(auth Auth, options ...Option) (*Client, error) {
	if err := auth.validate(); err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		auth:       auth,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

type apiResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Result json.RawMessage `json:"result"`
}

// request performs one API call and decodes the response envelope into
// result. A success=false envelope is returned as *APIError.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, result any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, &reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response for %s %s: %w", method, path, err)
	}

	if !envelope.Success {
		apiErr := &APIError{}
		for _, e := range envelope.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decoding result for %s %s: %w", method, path, err)
		}
	}

	return nil
}

// Zone is a remote zone, resolved by name lookup.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListZones returns the zones whose name matches exactly.
func (c *Client) ListZones(ctx context.Context, name string) ([]Zone, error) {
	var zones []Zone
	if err := c.request(ctx, http.MethodGet, "/zones", url.Values{"name": {name}}, nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// Record is the wire shape of a DNS record.
type Record struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     uint32 `json:"ttl"`
	Proxied bool   `json:"proxied"`
	Comment string `json:"comment,omitempty"`
}

// ListRecordsByName returns every record in the zone with exactly this
// name, regardless of type.
func (c *Client) ListRecordsByName(ctx context.Context, zoneID, name string) ([]Record, error) {
	var records []Record
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if err := c.request(ctx, http.MethodGet, path, url.Values{"name": {name}}, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

type batchDelete struct {
	ID string `json:"id"`
}

type batchRequest struct {
	Deletes []batchDelete `json:"deletes,omitempty"`
	Posts   []Record      `json:"posts,omitempty"`
}

// BatchRecords deletes and creates records in one atomic call.
func (c *Client) BatchRecords(ctx context.Context, zoneID string, deletes []string, posts []Record) error {
	batch := batchRequest{Posts: posts}
	for _, id := range deletes {
		batch.Deletes = append(batch.Deletes, batchDelete{ID: id})
	}

	path := fmt.Sprintf("/zones/%s/dns_records/batch", zoneID)
	return c.request(ctx, http.MethodPost, path, nil, batch, nil)
}
