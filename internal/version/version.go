package version

// Version is the version of the argo-guard binary.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-guard/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "main"

// SchemaVersion is the layout version of the tables written by the results stores.
const SchemaVersion = "1.0.0"

// GetVersion returns the binary version.
func GetVersion() string {
	return Version
}
