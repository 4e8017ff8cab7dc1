package client

// http_client.go = talks to the yamdb REST API on behalf of the CLI commands.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"yamdb/internal/microservices/http-api/dto"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError carries the server's error body for a non-2xx response.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Auth

func (c *HTTPClient) Signup(ctx context.Context, request dto.SignupRequest) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Token(ctx context.Context, request dto.TokenRequest) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/token", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Catalog

// ListSlugs lists categories or genres; kind is the collection path segment.
func (c *HTTPClient) ListSlugs(ctx context.Context, kind, search string) ([]dto.SlugResponse, error) {
	path := "/api/v1/" + kind + "?page_size=" + strconv.Itoa(dto.MaxPageSize)
	if search != "" {
		path += "&search=" + url.QueryEscape(search)
	}
	var result dto.Paginated[dto.SlugResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) CreateSlug(ctx context.Context, kind, name, slug string) (*dto.SlugResponse, error) {
	var result dto.SlugResponse
	req := dto.SlugRequest{Name: &name, Slug: &slug}
	if err := c.do(ctx, http.MethodPost, "/api/v1/"+kind, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteSlug(ctx context.Context, kind, slug string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/"+kind+"/"+url.PathEscape(slug), nil, nil)
}

// Titles

func (c *HTTPClient) ListTitles(ctx context.Context, filter url.Values) (*dto.Paginated[dto.TitleResponse], error) {
	path := "/api/v1/titles"
	if len(filter) > 0 {
		path += "?" + filter.Encode()
	}
	var result dto.Paginated[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetTitle(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	var result dto.TitleResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateTitle(ctx context.Context, request dto.TitleRequest) (*dto.TitleResponse, error) {
	var result dto.TitleResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/titles", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reviews and comments

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64, page int) (*dto.Paginated[dto.ReviewResponse], error) {
	var result dto.Paginated[dto.ReviewResponse]
	path := fmt.Sprintf("/api/v1/titles/%d/reviews?page=%d", titleID, page)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var result dto.ReviewResponse
	req := dto.ReviewRequest{Text: &text, Score: json.Number(strconv.Itoa(score))}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", titleID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/titles/%d/reviews/%d", titleID, reviewID), nil, nil)
}

func (c *HTTPClient) ListComments(ctx context.Context, titleID, reviewID int64, page int) (*dto.Paginated[dto.CommentResponse], error) {
	var result dto.Paginated[dto.CommentResponse]
	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments?page=%d", titleID, reviewID, page)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", titleID, reviewID)
	if err := c.do(ctx, http.MethodPost, path, dto.CommentRequest{Text: &text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
