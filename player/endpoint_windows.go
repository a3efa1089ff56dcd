//go:build windows

package player

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

func endpointPath(name string) string {
	return `\\.\pipe\` + name
}

func dialEndpoint(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}

// removeEndpoint is a no-op: named pipes vanish with their last handle.
func removeEndpoint(string) error {
	return nil
}
