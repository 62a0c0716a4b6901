package fsops

// Deleter abstracts the single filesystem mutation the delete walk performs
// Enables tests to observe removal order without touching the tree
type Deleter interface {
	// Remove deletes a file, a symbolic link or an empty directory
	Remove(path string) error
}
