package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckSchemaCompatibility checks whether a database created with storedVersion can be
// written by a binary whose schema is currentVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - The stored minor version must not be newer than the current one
//   - Patch versions can differ
//
// Examples:
//   - Current 1.2.0, Stored 1.2.0 -> OK
//   - Current 1.2.0, Stored 1.2.7 -> OK
//   - Current 1.3.0, Stored 1.2.0 -> OK (older tables are a subset)
//   - Current 1.2.0, Stored 1.3.0 -> ERROR (database written by a newer binary)
//   - Current 2.0.0, Stored 1.2.0 -> ERROR
func CheckSchemaCompatibility(currentVersion, storedVersion string) error {
	currentVersion = strings.TrimPrefix(currentVersion, "v")
	storedVersion = strings.TrimPrefix(storedVersion, "v")

	if currentVersion == "main" || storedVersion == "main" {
		return nil
	}

	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid schema version '%s': %w", currentVersion, err)
	}

	stored, err := semver.NewVersion(storedVersion)
	if err != nil {
		return fmt.Errorf("invalid stored schema version '%s': %w", storedVersion, err)
	}

	if current.Major() != stored.Major() {
		return fmt.Errorf("major version mismatch: binary writes schema %d.x.x but database has %d.x.x",
			current.Major(), stored.Major())
	}

	if stored.Minor() > current.Minor() {
		return fmt.Errorf("minor version mismatch: database schema %d.%d.x is newer than %d.%d.x",
			stored.Major(), stored.Minor(), current.Major(), current.Minor())
	}

	return nil
}
