//go:build unix

package mount

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
)

// Inspect reports what is at localMountPoint by comparing its device with
// its parent's. A stat failing with ENOTCONN means sshfs lost its transport.
func Inspect(localMountPoint string) State {
	info, err := os.Stat(localMountPoint)
	if err != nil {
		switch {
		case errors.Is(err, syscall.ENOTCONN):
			return StateStale
		case errors.Is(err, os.ErrNotExist):
			return StateMissing
		}
		return StateUnknown
	}

	parent, err := os.Stat(filepath.Dir(filepath.Clean(localMountPoint)))
	if err != nil {
		return StateUnknown
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	pst, pok := parent.Sys().(*syscall.Stat_t)
	if !ok || !pok {
		return StateUnknown
	}
	if st.Dev != pst.Dev {
		return StateMounted
	}
	return StateUnmounted
}
