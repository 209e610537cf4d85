package fsio

import (
	"os"
	"sync"
	"time"
)

// fakeSystem wraps the real osSystem with a call-count spy, a
// concurrent-calls high-water mark, and scripted transient failures.
// It backs the facade tests the same way the memory store's hooks back
// the store tests: real behavior by default, faults on demand.
type fakeSystem struct {
	mu sync.Mutex

	real osSystem

	// calls counts every native call that reached the fake.
	calls int

	// failuresLeft makes the next N calls fail with failErr.
	failuresLeft int
	failErr      error

	// delay stretches each call so concurrency overlap is observable.
	delay time.Duration

	inFlight      int
	maxConcurrent int
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{}
}

// failNext scripts the next n calls to fail with err.
func (f *fakeSystem) failNext(n int, err error) {
	f.mu.Lock()
	f.failuresLeft = n
	f.failErr = err
	f.mu.Unlock()
}

func (f *fakeSystem) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSystem) highWater() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxConcurrent
}

// enter records the call and returns the scripted error, if any.
func (f *fakeSystem) enter() error {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxConcurrent {
		f.maxConcurrent = f.inFlight
	}
	var err error
	if f.failuresLeft > 0 {
		f.failuresLeft--
		err = f.failErr
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (f *fakeSystem) exit() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeSystem) MkdirAll(path string, perm os.FileMode) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.MkdirAll(path, perm)
}

func (f *fakeSystem) ReadFile(path string) ([]byte, error) {
	defer f.exit()
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.real.ReadFile(path)
}

func (f *fakeSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.WriteFile(path, data, perm)
}

func (f *fakeSystem) AppendFile(path string, data []byte, perm os.FileMode) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.AppendFile(path, data, perm)
}

func (f *fakeSystem) Stat(path string) (os.FileInfo, error) {
	defer f.exit()
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.real.Stat(path)
}

func (f *fakeSystem) Remove(path string) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.Remove(path)
}

func (f *fakeSystem) RemoveAll(path string) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.RemoveAll(path)
}

func (f *fakeSystem) ReadDir(path string) ([]os.DirEntry, error) {
	defer f.exit()
	if err := f.enter(); err != nil {
		return nil, err
	}
	return f.real.ReadDir(path)
}

func (f *fakeSystem) Rename(oldpath, newpath string) error {
	defer f.exit()
	if err := f.enter(); err != nil {
		return err
	}
	return f.real.Rename(oldpath, newpath)
}
