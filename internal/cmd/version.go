package cmd

import (
	"context"
	"runtime"

	"github.com/docsmith-dev/docsmith/internal/soffice"
)

// VersionCmd prints version information, including whether the optional
// LibreOffice collaborator is available.
type VersionCmd struct{}

type versionInfo struct {
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
	LibreOffice string `json:"libreoffice,omitempty"`
}

func (c *VersionCmd) Run(ctx context.Context, out *Output) error {
	info := versionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if v, err := soffice.Version(ctx); err == nil {
		info.LibreOffice = firstLine(v)
	}

	return out.Emit(info)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}

	return s
}
