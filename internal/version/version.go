// Package version reports this module's build version.
package version

// Version is the module version. Overridden at build time with
// -ldflags "-X github.com/voltdb/voltgo/internal/version.Version=...".
var Version = "dev"

// String returns the version string.
func String() string { return Version }

// Full returns a full version string including the module name.
func Full() string { return "voltgo " + Version }
