package session

import (
	"time"

	"github.com/neurax-dev/neurax/internal/mount"
)

// MountRecord is a mount bound during a bring-up.
type MountRecord struct {
	Name       string `json:"name"`
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
}

// Record describes a session brought up by neurax. It is written once all
// mounts are bound and removed on tear-down.
type Record struct {
	ID         string        `json:"id"`
	Host       string        `json:"host"`
	ConfigPath string        `json:"config_path,omitempty"`
	Socket     string        `json:"socket"`
	SSHOpts    []string      `json:"ssh_opts,omitempty"`
	Mounts     []MountRecord `json:"mounts"`
	StartedAt  time.Time     `json:"started_at"`
}

// Mappings converts the recorded mounts back into mappings.
func (r *Record) Mappings() []mount.Mapping {
	out := make([]mount.Mapping, 0, len(r.Mounts))
	for _, m := range r.Mounts {
		out = append(out, mount.Mapping{Name: m.Name, RemotePath: m.RemotePath, LocalPath: m.LocalPath})
	}
	return out
}
