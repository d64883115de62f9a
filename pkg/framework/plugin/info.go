package plugin

import (
	"fmt"
	"strings"
)

// Info contains processor metadata
type Info struct {
	ID       string // Unique identifier (e.g., "com.knobula.mastering-eq")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Category (e.g., "Fx|EQ")
}

// String returns "Name Version (Vendor)"
func (i Info) String() string {
	s := i.Name
	if i.Version != "" {
		s += " " + i.Version
	}
	if i.Vendor != "" {
		s += " (" + i.Vendor + ")"
	}
	return s
}

// Validate checks that the identifying fields are present
func (i Info) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("plugin info: missing ID")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("plugin info %s: missing name", i.ID)
	}
	return nil
}
