// Package client is the HTTP client the admin CLI uses to talk to the
// card API: login plus the card CRUD calls, with the bearer token attached
// to every authenticated request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cardcms/internal/models"
)

var (
	// ErrUnauthorized means the stored token was rejected (stale, expired,
	// or never valid). The caller should drop to the logged-out state.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login for a wrong username/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("card not found")
	ErrConflict           = errors.New("slug conflict")
)

const requestTimeout = 30 * time.Second

// APIClient talks to one card API server. It is not safe for concurrent
// use; the CLI drives it from a single loop.
type APIClient struct {
	baseURL string
	httpc   *http.Client
	token   string
}

func New(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

// SetToken installs a previously stored token so a past session resumes
// without logging in again. Validity is only discovered on the first call.
func (c *APIClient) SetToken(token string) { c.token = token }

func (c *APIClient) Token() string { return c.token }

// CardForm carries the multipart fields for create/update. Empty strings
// and an empty ImagePath are omitted from the form, which is how partial
// updates work.
type CardForm struct {
	Title     string
	Content   string
	Category  string
	Author    string
	ReadTime  string
	ImagePath string // local file to upload; empty = no image part
}

// Login exchanges credentials for a token and installs it on the client.
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	c.token = out.Token
	return out.Token, nil
}

// ListCards fetches one page. An empty slice means there are no more pages.
func (c *APIClient) ListCards(ctx context.Context, page int) ([]models.Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/cards?page="+strconv.Itoa(page), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var cards []models.Card
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

// CreateCard posts a new card as a multipart form.
func (c *APIClient) CreateCard(ctx context.Context, form CardForm) (models.Card, error) {
	return c.sendCardForm(ctx, http.MethodPost, c.baseURL+"/api/cards", form)
}

// UpdateCard applies a partial update; only populated fields are sent.
func (c *APIClient) UpdateCard(ctx context.Context, id string, form CardForm) (models.Card, error) {
	return c.sendCardForm(ctx, http.MethodPut, c.baseURL+"/api/cards/"+id, form)
}

// DeleteCard removes a card permanently.
func (c *APIClient) DeleteCard(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/cards/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp)
}

func (c *APIClient) sendCardForm(ctx context.Context, method, url string, form CardForm) (models.Card, error) {
	body, contentType, err := buildCardForm(form)
	if err != nil {
		return models.Card{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return models.Card{}, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return models.Card{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return models.Card{}, err
	}

	var card models.Card
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return models.Card{}, fmt.Errorf("decode card: %w", err)
	}
	return card, nil
}

// buildCardForm writes only populated fields, matching the server's
// partial-update contract.
func buildCardForm(form CardForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":    form.Title,
		"content":  form.Content,
		"category": form.Category,
		"author":   form.Author,
		"readTime": form.ReadTime,
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if form.ImagePath != "" {
		data, err := os.ReadFile(form.ImagePath)
		if err != nil {
			return nil, "", fmt.Errorf("read image %q: %w", form.ImagePath, err)
		}
		fw, err := w.CreateFormFile("image", filepath.Base(form.ImagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// do attaches the bearer token and executes the request.
func (c *APIClient) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpc.Do(req)
}

// checkStatus maps HTTP failures onto client errors.
func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return apiError(resp)
	}
}

// apiError extracts the server's {"error": ...} message when present.
func apiError(resp *http.Response) error {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, out.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
