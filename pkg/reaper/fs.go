package reaper

import "os"

// OSFilesystem is the Filesystem backed by the local disk
type OSFilesystem struct{}

// Exists reports whether path is a regular file. Stat failures count as absent.
func (OSFilesystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the file at path
func (OSFilesystem) Remove(path string) error {
	return os.Remove(path)
}
