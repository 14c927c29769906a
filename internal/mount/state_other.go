//go:build !unix

package mount

// Inspect cannot tell mounts apart on this platform.
func Inspect(localMountPoint string) State {
	return StateUnknown
}
