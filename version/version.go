package version

import (
	"runtime"
	"runtime/debug"
)

// Populated at build time via -ldflags "-X specter-vision/version.BuildVersion=...".
var (
	BuildVersion = "dev"
	GitSHA       = ""
)

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get reports the running build, falling back to VCS stamps from the Go
// toolchain when ldflags were not set.
func Get(service string) Info {
	sha := GitSHA
	if sha == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					sha = s.Value
				}
			}
		}
	}
	return Info{
		Service:   service,
		Version:   BuildVersion,
		GitSHA:    sha,
		GoVersion: runtime.Version(),
	}
}
