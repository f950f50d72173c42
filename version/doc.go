// Package version reports the tabprofile build version.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/tabprofile/version.Version=1.0.0"
//
// Values left empty are filled from the module build info when available.
package version
