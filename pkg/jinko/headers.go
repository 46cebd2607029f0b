package jinko

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Project-item metadata headers. Values are base64-encoded so they survive
// HTTP header transport regardless of content.
const (
	HeaderItemName        = "X-jinko-project-item-name"
	HeaderItemDescription = "X-jinko-project-item-description"
	HeaderItemFolderIDs   = "X-jinko-project-item-folder-ids"
	HeaderItemVersionName = "X-jinko-project-item-version-name"
)

// ItemMeta is optional metadata attached when posting a project item: where
// it goes and what it is called in the project tree.
type ItemMeta struct {
	Name        string
	Description string
	FolderID    string
	VersionName string
}

// folderAction is the wire form of a folder assignment.
type folderAction struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Headers encodes the metadata into its header form. Empty fields produce no
// header. The folder ID must be a UUID and is wrapped into a one-element
// action list before encoding.
func (m *ItemMeta) Headers() (map[string]string, error) {
	headers := make(map[string]string)
	if m.Name != "" {
		headers[HeaderItemName] = encodeHeaderValue(m.Name)
	}
	if m.Description != "" {
		headers[HeaderItemDescription] = encodeHeaderValue(m.Description)
	}
	if m.VersionName != "" {
		headers[HeaderItemVersionName] = encodeHeaderValue(m.VersionName)
	}
	if m.FolderID != "" {
		if _, err := uuid.Parse(m.FolderID); err != nil {
			return nil, fmt.Errorf("invalid folder id %q: %w", m.FolderID, err)
		}
		payload, err := json.Marshal([]folderAction{{ID: m.FolderID, Action: "add"}})
		if err != nil {
			return nil, fmt.Errorf("failed to encode folder ids: %w", err)
		}
		headers[HeaderItemFolderIDs] = encodeHeaderValue(string(payload))
	}
	return headers, nil
}

func encodeHeaderValue(v string) string {
	return base64.StdEncoding.EncodeToString([]byte(v))
}

// DecodeHeaderValue reverses encodeHeaderValue. Exposed for tests and
// debugging tools that inspect outgoing requests.
func DecodeHeaderValue(v string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return "", fmt.Errorf("failed to decode header value: %w", err)
	}
	return string(data), nil
}
