package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	fullUUIDSuffix  = regexp.MustCompile(`_[0-9a-fA-F]{8}_[0-9a-fA-F]{4}_[0-9a-fA-F]{4}_[0-9a-fA-F]{4}_[0-9a-fA-F]{12}$`)
	shortUUIDSuffix = regexp.MustCompile(`_[0-9a-fA-F]{8}_[0-9a-fA-F]{4}_[0-9a-fA-F]{4}_[0-9a-fA-F]{4}$`)
)

// GenerateAgentID returns "<name>_<uuid>" with the uuid's dashes turned into underscores.
func GenerateAgentID(name string) string {
	return name + "_" + strings.ReplaceAll(uuid.NewString(), "-", "_")
}

// ExtractAgentName recovers the display name from an id built by GenerateAgentID.
func ExtractAgentName(id string) string {
	if loc := fullUUIDSuffix.FindStringIndex(id); loc != nil {
		return id[:loc[0]]
	}
	if loc := shortUUIDSuffix.FindStringIndex(id); loc != nil {
		return id[:loc[0]]
	}
	if i := strings.LastIndex(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}
