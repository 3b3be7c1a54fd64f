// Package orchestra provides the version information for orchestra-go.
package orchestra

// Version is the current version of orchestra-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
