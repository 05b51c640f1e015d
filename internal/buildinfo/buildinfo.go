// Package buildinfo carries values injected at link time with
//
//	-ldflags "-X github.com/dmitrijs2005/devfeed/internal/buildinfo.Version=..."
package buildinfo

import "fmt"

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

func String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s", Version, Date, Commit)
}
