// Package version carries the toolctl build version.
package version

// AppVersion is the current toolctl version. Overridable at build time via
// -ldflags "-X toolctl/internal/version.AppVersion=...".
var AppVersion = "0.1.0"
