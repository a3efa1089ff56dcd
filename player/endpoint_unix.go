//go:build !windows

package player

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
)

func endpointPath(name string) string {
	return filepath.Join(os.TempDir(), name+".sock")
}

func dialEndpoint(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}

// removeEndpoint deletes the socket file the player left behind.
func removeEndpoint(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
