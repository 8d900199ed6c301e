package backlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ilia01/attachsync/internal/config"
	"github.com/Ilia01/attachsync/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

type Client struct {
	spaceID  string
	apiKey   string
	host     string
	pageSize int
	http     *http.Client
}

// NewClient builds a client for one space. Settings are expected to have
// defaults applied; zero values fall back to the package defaults anyway.
func NewClient(settings config.Settings) *Client {
	host := settings.Host
	if host == "" {
		host = config.DefaultHost
	}
	pageSize := settings.PageSize
	if pageSize <= 0 || pageSize > config.MaxPageSize {
		pageSize = config.DefaultPageSize
	}
	return &Client{
		spaceID:  settings.SpaceID,
		apiKey:   settings.APIKey,
		host:     strings.Trim(host, "./"),
		pageSize: pageSize,
		http: &http.Client{
			Timeout: settings.Timeout,
		},
	}
}

// BuildURI returns https://{space}.{host}{endpoint}?apiKey={key}[&{query}].
func (c *Client) BuildURI(endpoint string, query url.Values) string {
	uri := fmt.Sprintf("https://%s.%s%s?apiKey=%s", c.spaceID, c.host, endpoint, url.QueryEscape(c.apiKey))
	if len(query) > 0 {
		uri += "&" + query.Encode()
	}
	return uri
}

func (c *Client) ListAttachments(ctx context.Context, issueKey string) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	if err := c.getJSON(ctx, attachmentsEndpoint(issueKey), nil, &attachments); err != nil {
		return nil, fmt.Errorf("list attachments of %s: %w", issueKey, err)
	}
	return attachments, nil
}

// OpenAttachment starts the binary download of one attachment. The caller
// closes the returned body.
func (c *Client) OpenAttachment(ctx context.Context, issueKey string, attachmentID int64) (io.ReadCloser, error) {
	endpoint := attachmentsEndpoint(issueKey) + "/" + strconv.FormatInt(attachmentID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURI(endpoint, nil), nil)
	if err != nil {
		return nil, redact(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, redact(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseAPIError(resp.StatusCode, endpoint, data)
	}
	return resp.Body, nil
}

func attachmentsEndpoint(issueKey string) string {
	return "/api/v2/issues/" + url.PathEscape(issueKey) + "/attachments"
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURI(endpoint, query), nil)
	if err != nil {
		return redact(err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, endpoint, v)
}

func (c *Client) doJSON(req *http.Request, endpoint string, v any) error {
	return c.do(req, endpoint, func(body []byte) error {
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("%w from %s: %v", ErrInvalidResponse, endpoint, err)
		}
		return nil
	})
}

func (c *Client) do(req *http.Request, endpoint string, handler func([]byte) error) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return redact(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return redact(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, endpoint, data)
	}

	if handler != nil {
		return handler(data)
	}
	return nil
}
