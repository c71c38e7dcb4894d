package messaging

import (
	"fmt"
	"strings"
)

// MarkReadMode selects how mark-as-read moves a participant's read horizon.
type MarkReadMode string

const (
	// MarkReadLatestIndex looks up the newest message and stores its index.
	MarkReadLatestIndex MarkReadMode = "latest_index"
	// MarkReadAll stamps the read timestamp without resolving an index.
	MarkReadAll MarkReadMode = "all"
)

// ParseMarkReadMode reads the configured mode; empty means latest_index.
func ParseMarkReadMode(raw string) (MarkReadMode, error) {
	switch MarkReadMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MarkReadLatestIndex:
		return MarkReadLatestIndex, nil
	case MarkReadAll:
		return MarkReadAll, nil
	default:
		return "", fmt.Errorf("unknown mark-as-read mode %q", raw)
	}
}
