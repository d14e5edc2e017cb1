// Package version holds the build version, set at link time:
//
//	go build -ldflags "-X msalign/internal/version.Version=v1.2.3"
package version

// Version is the msalign release.
var Version = "dev"
