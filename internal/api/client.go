// Package api is the HTTP client for the ThinkEx remote data store. The
// backend owns canonical state; this client only moves JSON in and out of it.
//
// Error semantics: a 404 on a list fetch means "no such list" and yields a
// nil result, not an error. Every other non-2xx status is surfaced as an
// *Error carrying the status code and the server's detail message when one
// is present.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thinkex/thinkex/pkg/board"
)

// Error is a non-2xx response from the remote data store.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsNotFound returns true if err is an api error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one ThinkEx backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the given base URL (e.g.
// "https://api.thinkex.example"). A trailing slash is tolerated.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base URL cannot be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base URL: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// do issues one request and decodes a JSON response into out (when non-nil).
// Non-2xx statuses become *Error values with the backend's "detail" message
// when the body carries one.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); readErr == nil {
			if json.Unmarshal(data, &detail) == nil {
				apiErr.Detail = detail.Detail
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetClusterLists fetches all boards with their full nested contents.
func (c *Client) GetClusterLists(ctx context.Context) ([]board.ClusterList, error) {
	var out []board.ClusterList
	if err := c.do(ctx, http.MethodGet, "/cluster-lists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBoardInfo fetches id/title summaries for every board.
func (c *Client) GetBoardInfo(ctx context.Context) ([]board.ClusterListInfo, error) {
	var out []board.ClusterListInfo
	if err := c.do(ctx, http.MethodGet, "/cluster-lists/info", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetClusterList fetches one board by id. A 404 is not an error: it returns
// (nil, nil) and the caller must handle the nil result.
func (c *Client) GetClusterList(ctx context.Context, listID string) (*board.ClusterList, error) {
	var out board.ClusterList
	err := c.do(ctx, http.MethodGet, "/cluster-lists/"+url.PathEscape(listID), nil, &out)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// CreateClusterList creates a new, empty board.
func (c *Client) CreateClusterList(ctx context.Context, title string) (*board.ClusterList, error) {
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	var out board.ClusterList
	if err := c.do(ctx, http.MethodPost, "/cluster-lists", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveCard moves a card to a different cluster within the same list. The
// backend appends it to the destination cluster's sequence.
func (c *Client) MoveCard(ctx context.Context, listID, cardID, newClusterTitle string) error {
	body := struct {
		NewClusterTitle string `json:"new_cluster_title"`
	}{NewClusterTitle: newClusterTitle}
	path := fmt.Sprintf("/cluster-lists/%s/qa/%s/move", url.PathEscape(listID), url.PathEscape(cardID))
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// ReorderCluster sets the explicit full order of one cluster's cards.
func (c *Client) ReorderCluster(ctx context.Context, listID, clusterTitle string, orderedIDs []string) error {
	body := struct {
		ClusterTitle string   `json:"cluster_title"`
		OrderedQAIDs []string `json:"ordered_qa_ids"`
	}{ClusterTitle: clusterTitle, OrderedQAIDs: orderedIDs}
	path := fmt.Sprintf("/cluster-lists/%s/reorder", url.PathEscape(listID))
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// AddQA adds a Q&A card to the named cluster, creating the cluster if it
// does not exist. Returns the cluster as the backend now sees it.
func (c *Client) AddQA(ctx context.Context, listID, clusterName, question, answer string) (*board.Cluster, error) {
	body := struct {
		ClusterListID string `json:"cluster_list_id"`
		ClusterName   string `json:"clusterName"`
		Question      string `json:"question"`
		Answer        string `json:"answer"`
	}{ClusterListID: listID, ClusterName: clusterName, Question: question, Answer: answer}
	var out struct {
		Message string        `json:"message"`
		Cluster board.Cluster `json:"cluster"`
	}
	if err := c.do(ctx, http.MethodPost, "/add_qa", body, &out); err != nil {
		return nil, err
	}
	return &out.Cluster, nil
}

// UpdateQA updates the question and/or answer of a card in the named
// cluster. Nil means "leave unchanged"; at least one must be provided.
// Returns the card as the backend now sees it.
func (c *Client) UpdateQA(ctx context.Context, listID, clusterName, cardID string, question, answer *string) (*board.Card, error) {
	if question == nil && answer == nil {
		return nil, fmt.Errorf("at least one of question or answer must be provided")
	}
	body := struct {
		ClusterListID string  `json:"cluster_list_id"`
		ClusterName   string  `json:"clusterName"`
		QAID          string  `json:"qa_id"`
		Question      *string `json:"question,omitempty"`
		Answer        *string `json:"answer,omitempty"`
	}{ClusterListID: listID, ClusterName: clusterName, QAID: cardID, Question: question, Answer: answer}
	var out struct {
		Message string     `json:"message"`
		QAPair  board.Card `json:"qa_pair"`
	}
	if err := c.do(ctx, http.MethodPost, "/update_qa", body, &out); err != nil {
		return nil, err
	}
	return &out.QAPair, nil
}

// DeleteCard deletes one card from the named cluster.
func (c *Client) DeleteCard(ctx context.Context, listID, cardID, clusterName string) error {
	path := fmt.Sprintf("/cluster-lists/%s/qa/%s?clusterName=%s",
		url.PathEscape(listID), url.PathEscape(cardID), url.QueryEscape(clusterName))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// DeleteCluster deletes a cluster and all its cards.
func (c *Client) DeleteCluster(ctx context.Context, listID, clusterTitle string) error {
	path := fmt.Sprintf("/cluster-lists/%s/cluster/%s", url.PathEscape(listID), url.PathEscape(clusterTitle))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// DeleteClusterList deletes an entire board.
func (c *Client) DeleteClusterList(ctx context.Context, listID string) error {
	return c.do(ctx, http.MethodDelete, "/cluster-lists/"+url.PathEscape(listID), nil, nil)
}
