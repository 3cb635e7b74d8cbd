package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

type issue struct {
	Number    int       `json:"number"`
	NodeID    string    `json:"node_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	Labels    []label   `json:"labels"`
	Assignees []account `json:"assignees"`
	Milestone *struct {
		Title string `json:"title"`
	} `json:"milestone"`
	HTMLURL     string          `json:"html_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PullRequest json.RawMessage `json:"pull_request"`
}

type label struct {
	Name string `json:"name"`
}

type account struct {
	Login string `json:"login"`
}

func (i *issue) isPullRequest() bool {
	return len(i.PullRequest) > 0 && string(i.PullRequest) != "null"
}

// statusOf splits a label name into its status value, if it carries the
// status prefix.
func (c *Client) statusOf(name string) (string, bool) {
	if len(name) < len(c.prefix) || !strings.EqualFold(name[:len(c.prefix)], c.prefix) {
		return "", false
	}
	status := strings.TrimSpace(name[len(c.prefix):])
	return status, status != ""
}

func (c *Client) toRecord(origin string, i *issue) *types.RemoteRecord {
	rec := &types.RemoteRecord{
		Origin:    origin,
		Number:    i.Number,
		NodeID:    i.NodeID,
		Title:     i.Title,
		Body:      strings.ReplaceAll(i.Body, "\r\n", "\n"),
		State:     i.State,
		URL:       i.HTMLURL,
		CreatedAt: i.CreatedAt.UTC(),
		UpdatedAt: i.UpdatedAt.UTC(),
	}
	for _, l := range i.Labels {
		if status, ok := c.statusOf(l.Name); ok {
			if rec.Status == "" {
				rec.Status = status
			}
			continue
		}
		rec.Labels = append(rec.Labels, l.Name)
	}
	for _, a := range i.Assignees {
		rec.Assignees = append(rec.Assignees, a.Login)
	}
	if i.Milestone != nil {
		rec.Milestone = i.Milestone.Title
	}
	return rec
}

// CurrentUser returns the login of the token's owner.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/user")
	if err != nil {
		return "", err
	}
	login := gjson.GetBytes(resp.body, "login").String()
	if login == "" {
		return "", fmt.Errorf("GET /user: response has no login")
	}
	return login, nil
}

// ListRecords returns one page of issues, open and closed, oldest first.
// The cursor is the next page URL from the Link header.
func (c *Client) ListRecords(ctx context.Context, origin, cursor string) (*types.RecordPage, error) {
	target := cursor
	if target == "" {
		p, err := repoPath(origin)
		if err != nil {
			return nil, err
		}
		target = p + "/issues?state=all&sort=created&direction=asc&per_page=" + strconv.Itoa(perPage)
	}

	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var issues []issue
	if err := json.Unmarshal(resp.body, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues for %s: %w", origin, err)
	}

	page := &types.RecordPage{Next: nextLink(resp.header)}
	for i := range issues {
		if issues[i].isPullRequest() {
			continue
		}
		page.Records = append(page.Records, c.toRecord(origin, &issues[i]))
	}
	return page, nil
}

// Vocabulary lists the repository labels and splits them into status
// values and plain labels.
func (c *Client) Vocabulary(ctx context.Context, origin string) (*types.Vocabulary, error) {
	p, err := repoPath(origin)
	if err != nil {
		return nil, err
	}

	vocab := &types.Vocabulary{}
	target := p + "/labels?per_page=" + strconv.Itoa(perPage)
	for target != "" {
		resp, err := c.get(ctx, target)
		if err != nil {
			return nil, err
		}
		gjson.GetBytes(resp.body, "#.name").ForEach(func(_, name gjson.Result) bool {
			if status, ok := c.statusOf(name.String()); ok {
				vocab.Statuses = append(vocab.Statuses, status)
			} else {
				vocab.Labels = append(vocab.Labels, name.String())
			}
			return true
		})
		target = nextLink(resp.header)
	}
	return vocab, nil
}

// CreateRecord opens an issue. A closed record is created open and then
// closed, since the create endpoint does not accept a state.
func (c *Client) CreateRecord(ctx context.Context, origin string, fields types.RecordFields) (*types.RemoteRecord, error) {
	p, err := repoPath(origin)
	if err != nil {
		return nil, err
	}

	payload, err := c.payload(fields, "", false)
	if err != nil {
		return nil, err
	}
	created, err := c.send(ctx, http.MethodPost, p+"/issues", payload)
	if err != nil {
		return nil, err
	}
	if !fields.Closed {
		return c.toRecord(origin, created), nil
	}

	closed, err := c.send(ctx, http.MethodPatch, fmt.Sprintf("%s/issues/%d", p, created.Number), []byte(`{"state":"closed"}`))
	if err != nil {
		return nil, fmt.Errorf("created #%d but failed to close it: %w", created.Number, err)
	}
	return c.toRecord(origin, closed), nil
}

// UpdateRecord overwrites title, body, labels and state. When fields carry
// no status the issue's current status label is kept.
func (c *Client) UpdateRecord(ctx context.Context, key types.RecordKey, fields types.RecordFields) (*types.RemoteRecord, error) {
	p, err := repoPath(key.Origin)
	if err != nil {
		return nil, err
	}
	target := fmt.Sprintf("%s/issues/%d", p, key.Number)

	keep := ""
	if fields.Status == "" {
		resp, err := c.get(ctx, target)
		if err != nil {
			return nil, err
		}
		gjson.GetBytes(resp.body, "labels.#.name").ForEach(func(_, name gjson.Result) bool {
			if _, ok := c.statusOf(name.String()); ok {
				keep = name.String()
				return false
			}
			return true
		})
	}

	payload, err := c.payload(fields, keep, true)
	if err != nil {
		return nil, err
	}
	updated, err := c.send(ctx, http.MethodPatch, target, payload)
	if err != nil {
		return nil, err
	}
	return c.toRecord(key.Origin, updated), nil
}

// CloseRecord closes an issue.
func (c *Client) CloseRecord(ctx context.Context, key types.RecordKey) error {
	p, err := repoPath(key.Origin)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, http.MethodPatch, fmt.Sprintf("%s/issues/%d", p, key.Number), []byte(`{"state":"closed"}`))
	return err
}

// payload builds the JSON body for create and update. keepStatus is an
// existing status label to preserve when fields has no status.
func (c *Client) payload(fields types.RecordFields, keepStatus string, withState bool) ([]byte, error) {
	labels := make([]string, 0, len(fields.Labels)+1)
	labels = append(labels, fields.Labels...)
	switch {
	case fields.Status != "":
		labels = append(labels, c.prefix+fields.Status)
	case keepStatus != "":
		labels = append(labels, keepStatus)
	}

	body, err := sjson.SetBytes([]byte(`{}`), "title", fields.Title)
	if err == nil {
		body, err = sjson.SetBytes(body, "body", fields.Body)
	}
	if err == nil {
		body, err = sjson.SetBytes(body, "labels", labels)
	}
	if err == nil && withState {
		state := "open"
		if fields.Closed {
			state = "closed"
		}
		body, err = sjson.SetBytes(body, "state", state)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue payload: %w", err)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (*issue, error) {
	resp, err := c.do(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	var out issue
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode issue: %w", err)
	}
	return &out, nil
}
