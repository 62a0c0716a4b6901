package fsops

// FakeDeleter implements Deleter for testing
// Records every remove call; FailOn makes the matching path fail with Err
type FakeDeleter struct {
	Calls  []string
	FailOn string
	Err    error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	if f.FailOn != "" && path == f.FailOn {
		return f.Err
	}
	return nil
}
