package identity

import (
	"fmt"
	"strings"
	"time"
)

// Identity is one enrolled person with their stored template.
type Identity struct {
	ID            int64
	GivenName     string
	FamilyName    string
	ExternalKey   string
	SecondaryCode string
	Template      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns the name printed on receipts and log lines.
func (i Identity) DisplayName() string {
	return strings.TrimSpace(i.GivenName + " " + i.FamilyName)
}

// Summary renders the one-line listing used by the enrolled-users view.
func (i Identity) Summary() string {
	if code := strings.TrimSpace(i.SecondaryCode); code != "" {
		return fmt.Sprintf("%s (%s, %s)", i.DisplayName(), i.ExternalKey, code)
	}
	return fmt.Sprintf("%s (%s)", i.DisplayName(), i.ExternalKey)
}

// Clocking is one attendance event joined with its identity for display.
type Clocking struct {
	ID          int64
	IdentityID  int64
	ExternalKey string
	DisplayName string
	RecordedAt  time.Time
}
