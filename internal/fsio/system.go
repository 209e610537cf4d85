package fsio

import "os"

// System is the seam between the facade and the native filesystem.
// The production implementation delegates straight to the os package;
// tests substitute a fake that counts calls and scripts
// descriptor-exhaustion failures. Paths handed to a System have
// already been resolved and confined by the Sandbox.
type System interface {
	MkdirAll(path string, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	AppendFile(path string, data []byte, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	Remove(path string) error
	RemoveAll(path string) error
	ReadDir(path string) ([]os.DirEntry, error)
	Rename(oldpath, newpath string) error
}

// osSystem is the production System backed by the os package.
type osSystem struct{}

func (osSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (osSystem) AppendFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (osSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (osSystem) Remove(path string) error {
	return os.Remove(path)
}

func (osSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (osSystem) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (osSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

var _ System = osSystem{}
