// Package open launches URLs and files with the system's default handler.
package open

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/log"
)

// Start opens input with the default handler without waiting for it.
func Start(input string) error {
	cmd, ok := command(runtime.GOOS, input)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	log.Debugf("opening %s with %s", input, cmd.Path)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() { _ = cmd.Wait() }()
	return nil
}

// URL opens a web page in the browser. Only http and https are accepted.
func URL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("refusing to open %q: not a web URL", raw)
	}

	return Start(u.String())
}

func command(goos, input string) (*exec.Cmd, bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), true
	case constant.Darwin:
		return exec.Command("open", input), true
	case constant.Linux:
		return exec.Command("xdg-open", input), true
	case constant.Android:
		return exec.Command("termux-open", input), true
	default:
		return nil, false
	}
}
