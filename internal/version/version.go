// Package version reports the build information set with -ldflags at build time, e.g.
//
//	go build -ldflags "-X github.com/rein-network/rein-node/internal/version.version=v1.2.0"
package version

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info is the build information for the running binary.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}
