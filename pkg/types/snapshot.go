package types

import "time"

// SnapshotInfo describes one on-disk snapshot file. Identity is the file's
// base name minus the .json extension.
type SnapshotInfo struct {
	ID       string    `json:"id"`
	FileName string    `json:"fileName"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
}
