// Package fsio is the throttled, sandboxed, retrying I/O layer every
// persisted byte in AutoMaker passes through. Dozens of agent sessions
// may each read and write project state concurrently; unthrottled,
// that reliably exhausts the OS descriptor table. Each facade call
// therefore goes Sandbox → Gate → Retry:
//
//   - the Sandbox confines the resolved path to the facade's root,
//   - the Gate bounds how many native calls are in flight at once,
//   - the Retry controller re-runs only EMFILE/ENFILE failures, with
//     exponential backoff held inside the already-acquired slot.
//
// The gate, retry policy and throttling configuration are process-wide
// and shared by every IO instance; the sandbox root is per instance.
// Operations have no cancellation: once admitted they run to success
// or permanent failure.
package fsio

import (
	"errors"
	"os"
	"sync"
)

// IO is the operation facade for one sandbox root. Callers construct
// one per project data directory (and one for the global user-data
// directory) and perform every file operation through it.
//
// An IO is safe for concurrent use.
type IO struct {
	sandbox *Sandbox
	sys     System
}

// New creates a facade rooted at root, backed by the real filesystem.
func New(root string) (*IO, error) {
	return NewWithSystem(root, osSystem{})
}

// facades caches one IO per root so every store working on the same
// project shares a facade instead of re-canonicalizing the root on
// each call.
var (
	facadesMu sync.Mutex
	facades   = map[string]*IO{}
)

// ForRoot returns the process-wide facade for root, creating it on
// first use.
func ForRoot(root string) (*IO, error) {
	facadesMu.Lock()
	defer facadesMu.Unlock()
	if io, ok := facades[root]; ok {
		return io, nil
	}
	io, err := New(root)
	if err != nil {
		return nil, err
	}
	facades[root] = io
	return io, nil
}

// NewWithSystem creates a facade with an explicit System, for tests
// that need call counting or scripted failures.
func NewWithSystem(root string, sys System) (*IO, error) {
	sb, err := NewSandbox(root)
	if err != nil {
		return nil, err
	}
	return &IO{sandbox: sb, sys: sys}, nil
}

// Root returns the canonical sandbox root of this facade.
func (io *IO) Root() string {
	return io.sandbox.Root()
}

// Resolve exposes the sandbox check without performing any OS call.
// Path-construction helpers use it to validate derived paths early.
func (io *IO) Resolve(path string) (string, error) {
	return io.sandbox.Resolve(path)
}

// do runs one sandboxed, throttled, retried OS call. The slot is
// released on every path; the classified error is surfaced untouched.
func (io *IO) do(path string, fn func(abs string) error) error {
	abs, err := io.sandbox.Resolve(path)
	if err != nil {
		return err
	}
	release := sharedGate.acquire()
	defer release()
	return withRetry(func() error { return fn(abs) })
}

// MkdirAll creates the directory and any missing parents.
func (io *IO) MkdirAll(path string, perm os.FileMode) error {
	return io.do(path, func(abs string) error {
		return io.sys.MkdirAll(abs, perm)
	})
}

// ReadFile reads the whole file.
func (io *IO) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := io.do(path, func(abs string) error {
		var readErr error
		data, readErr = io.sys.ReadFile(abs)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteFile writes data to the file, creating or truncating it.
func (io *IO) WriteFile(path string, data []byte, perm os.FileMode) error {
	return io.do(path, func(abs string) error {
		return io.sys.WriteFile(abs, data, perm)
	})
}

// AppendFile appends data to the file, creating it if necessary.
func (io *IO) AppendFile(path string, data []byte, perm os.FileMode) error {
	return io.do(path, func(abs string) error {
		return io.sys.AppendFile(abs, data, perm)
	})
}

// Stat returns file info for the path.
func (io *IO) Stat(path string) (os.FileInfo, error) {
	var info os.FileInfo
	err := io.do(path, func(abs string) error {
		var statErr error
		info, statErr = io.sys.Stat(abs)
		return statErr
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Exists reports whether the path exists. Not-found is (false, nil);
// any other failure, including a sandbox rejection, is returned.
func (io *IO) Exists(path string) (bool, error) {
	_, err := io.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file or empty directory.
func (io *IO) Remove(path string) error {
	return io.do(path, func(abs string) error {
		return io.sys.Remove(abs)
	})
}

// RemoveAll deletes the path and anything below it.
func (io *IO) RemoveAll(path string) error {
	return io.do(path, func(abs string) error {
		return io.sys.RemoveAll(abs)
	})
}

// ReadDir lists the directory entries, sorted by name.
func (io *IO) ReadDir(path string) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := io.do(path, func(abs string) error {
		var readErr error
		entries, readErr = io.sys.ReadDir(abs)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Rename moves oldpath to newpath. Both paths are validated against
// the sandbox — a rename must not become the escape hatch the write
// path closed.
func (io *IO) Rename(oldpath, newpath string) error {
	absNew, err := io.sandbox.Resolve(newpath)
	if err != nil {
		return err
	}
	return io.do(oldpath, func(absOld string) error {
		return io.sys.Rename(absOld, absNew)
	})
}
