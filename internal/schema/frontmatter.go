package schema

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

const (
	yamlDelim = "---"
	tomlDelim = "+++"
)

// frontMatter is the typed view of the keys this package owns.
type frontMatter struct {
	Title    string       `yaml:"title" toml:"title"`
	Column   string       `yaml:"column" toml:"column"`
	Priority string       `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Type     string       `yaml:"type,omitempty" toml:"type,omitempty"`
	Tags     []string     `yaml:"tags,omitempty" toml:"tags,omitempty"`
	Created  time.Time    `yaml:"created" toml:"created"`
	Updated  time.Time    `yaml:"updated" toml:"updated"`
	Remote   *remoteBlock `yaml:"remote,omitempty" toml:"remote,omitempty"`
}

type remoteBlock struct {
	Origin              string    `yaml:"origin" toml:"origin"`
	Number              int       `yaml:"number" toml:"number"`
	NodeID              string    `yaml:"node_id,omitempty" toml:"node_id,omitempty"`
	LastSynced          time.Time `yaml:"last_synced" toml:"last_synced"`
	PushPending         bool      `yaml:"push_pending" toml:"push_pending"`
	CloseRemoteOnDelete bool      `yaml:"close_remote_on_delete" toml:"close_remote_on_delete"`
}

var ownedKeys = []string{"title", "column", "priority", "type", "tags", "created", "updated", "remote"}

// Parse splits raw file content into a task. The Filename field is left
// empty for the caller to fill in. Errors wrap types.ErrMalformedLocalRecord.
func Parse(data []byte) (*types.Task, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var format types.FrontMatterFormat
	var delim string
	switch {
	case strings.HasPrefix(text, yamlDelim+"\n"):
		format, delim = types.FormatYAML, yamlDelim
	case strings.HasPrefix(text, tomlDelim+"\n"):
		format, delim = types.FormatTOML, tomlDelim
	default:
		return nil, fmt.Errorf("%w: missing front matter", types.ErrMalformedLocalRecord)
	}

	rest := text[len(delim)+1:]
	var head, body string
	if strings.HasPrefix(rest, delim+"\n") || rest == delim {
		head, body = "", strings.TrimPrefix(rest, delim)
	} else {
		end := strings.Index(rest, "\n"+delim+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+delim) {
				return nil, fmt.Errorf("%w: unterminated front matter", types.ErrMalformedLocalRecord)
			}
			end = len(rest) - len(delim) - 1
		}
		head = rest[:end+1]
		body = rest[end+1+len(delim):]
	}
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")

	var fm frontMatter
	var all map[string]any
	switch format {
	case types.FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(head), &node); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
		}
		if node.Kind != 0 {
			if err := node.Decode(&fm); err != nil {
				return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
			}
			if err := node.Decode(&all); err != nil {
				return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
			}
		}
	case types.FormatTOML:
		if _, err := toml.Decode(head, &fm); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
		}
		if _, err := toml.Decode(head, &all); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
		}
	}

	for _, k := range ownedKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	task := &types.Task{
		Title:     fm.Title,
		Column:    types.ColumnID(fm.Column),
		Priority:  fm.Priority,
		Type:      fm.Type,
		Tags:      fm.Tags,
		Body:      body,
		CreatedAt: fm.Created,
		UpdatedAt: fm.Updated,
		Format:    format,
		Extra:     all,
	}
	if fm.Remote != nil {
		task.Remote = &types.RemoteLink{
			Origin:              fm.Remote.Origin,
			Number:              fm.Remote.Number,
			NodeID:              fm.Remote.NodeID,
			LastSynced:          fm.Remote.LastSynced,
			PushPending:         fm.Remote.PushPending,
			CloseRemoteOnDelete: fm.Remote.CloseRemoteOnDelete,
		}
	}
	return task, nil
}

// Render produces the file content for a task in its own front matter format.
func Render(task *types.Task) ([]byte, error) {
	fm := frontMatter{
		Title:    task.Title,
		Column:   string(task.Column),
		Priority: task.Priority,
		Type:     task.Type,
		Tags:     task.Tags,
		Created:  task.CreatedAt.UTC(),
		Updated:  task.UpdatedAt.UTC(),
	}
	if l := task.Remote; l != nil {
		fm.Remote = &remoteBlock{
			Origin:              l.Origin,
			Number:              l.Number,
			NodeID:              l.NodeID,
			LastSynced:          l.LastSynced.UTC(),
			PushPending:         l.PushPending,
			CloseRemoteOnDelete: l.CloseRemoteOnDelete,
		}
	}

	var buf bytes.Buffer
	switch task.Format {
	case types.FormatTOML:
		buf.WriteString(tomlDelim + "\n")
		if err := toml.NewEncoder(&buf).Encode(fm.merged(task.Extra)); err != nil {
			return nil, fmt.Errorf("failed to encode toml front matter: %w", err)
		}
		buf.WriteString(tomlDelim + "\n")
	default:
		buf.WriteString(yamlDelim + "\n")
		head, err := yaml.Marshal(&fm)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml front matter: %w", err)
		}
		buf.Write(head)
		if len(task.Extra) > 0 {
			extra, err := yaml.Marshal(task.Extra)
			if err != nil {
				return nil, fmt.Errorf("failed to encode extra front matter: %w", err)
			}
			buf.Write(extra)
		}
		buf.WriteString(yamlDelim + "\n")
	}

	buf.WriteString("\n")
	buf.WriteString(task.Body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// merged flattens the typed front matter and the preserved keys into one
// map, so the TOML encoder can order plain keys before tables.
func (fm *frontMatter) merged(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+len(ownedKeys))
	for k, v := range extra {
		m[k] = v
	}
	m["title"] = fm.Title
	m["column"] = fm.Column
	if fm.Priority != "" {
		m["priority"] = fm.Priority
	}
	if fm.Type != "" {
		m["type"] = fm.Type
	}
	if len(fm.Tags) > 0 {
		m["tags"] = fm.Tags
	}
	m["created"] = fm.Created
	m["updated"] = fm.Updated
	if r := fm.Remote; r != nil {
		remote := map[string]any{
			"origin":                 r.Origin,
			"number":                 r.Number,
			"last_synced":            r.LastSynced,
			"push_pending":           r.PushPending,
			"close_remote_on_delete": r.CloseRemoteOnDelete,
		}
		if r.NodeID != "" {
			remote["node_id"] = r.NodeID
		}
		m["remote"] = remote
	}
	return m
}
