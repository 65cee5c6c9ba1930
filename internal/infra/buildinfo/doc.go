// Package buildinfo exposes build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/taskdeck-go/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/taskdeck-go/internal/infra/buildinfo.Commit=abc123"
//
// The version is shown by `taskdeck-cli --version` and sent in the
// User-Agent header of every API request.
package buildinfo
