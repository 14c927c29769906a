package ssh

import (
	"path/filepath"

	"github.com/neurax-dev/neurax/internal/dirs"
)

// SocketDir returns the directory holding every control socket under runtimeRoot.
func SocketDir(runtimeRoot string) string {
	return filepath.Join(runtimeRoot, dirs.AppName, "sockets")
}

// SocketPath returns the control socket path for host under runtimeRoot.
func SocketPath(host, runtimeRoot string) string {
	return filepath.Join(SocketDir(runtimeRoot), host)
}
