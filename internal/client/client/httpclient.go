package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/okhotnikov/surveysync/internal/common"
	"github.com/okhotnikov/surveysync/internal/filex"
	"github.com/okhotnikov/surveysync/internal/netx"
)

// RESTClient talks to the survey backend over its REST contract.
type RESTClient struct {
	baseURL string
	http    *http.Client
	token   TokenProvider
}

// NewRESTClient builds a client for the given base URL. httpClient may be
// nil (http.DefaultClient is used); token may be nil when no auth is needed.
func NewRESTClient(baseURL string, httpClient *http.Client, token TokenProvider) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   token,
	}
}

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *RESTClient) authHeaders(ctx context.Context) (http.Header, error) {
	h := http.Header{}
	if c.token == nil {
		return h, nil
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	if token != "" {
		h.Set(common.AuthHeaderName, "Bearer "+token)
	}
	return h, nil
}

func (c *RESTClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *RESTClient) UploadFile(ctx context.Context, localURI string, kind models.MediaKind) (string, error) {
	if localURI == "" {
		return "", common.ErrorMissingLocalURI
	}

	data, err := filex.ReadLocalFile(localURI)
	if err != nil {
		return "", err
	}

	filename, contentType := inferUploadMeta(localURI, kind, data)

	headers, err := c.authHeaders(ctx)
	if err != nil {
		return "", err
	}

	body, err := netx.PostMultipartFile(ctx, c.http, c.baseURL+"/uploads",
		common.UploadFieldName, filename, contentType, data, headers)
	if err != nil {
		return "", err
	}

	var res UploadResult
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if res.URL == "" {
		return "", common.ErrorNoUploadURL
	}

	// The server may answer with a path like /uploads/x.jpg.
	return netx.ResolveURL(c.baseURL, res.URL), nil
}

func (c *RESTClient) SubmitAnswers(ctx context.Context, surveyID int64, payload *models.SubmissionPayload) (*SubmitResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/survey/%d/answers", c.baseURL, surveyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s; body: %s", common.ErrorServerStatus, resp.Status, string(body))
	}

	var res SubmitResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}
	return &res, nil
}
