// SPDX-License-Identifier: MIT
package capture

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// libraryGuard acquires the process-wide PortAudio library exactly once
// across however many concurrent Capture instances exist, and tears it
// down when the last one is released. PortAudio's own Initialize/Terminate
// pair is not refcounted, so every caller in the process must share one.
var libraryGuard struct {
	mu    sync.Mutex
	count int
}

var paInitialize = portaudio.Initialize
var paTerminate = portaudio.Terminate

func acquireLibrary() error {
	libraryGuard.mu.Lock()
	defer libraryGuard.mu.Unlock()

	if libraryGuard.count == 0 {
		if err := paInitialize(); err != nil {
			return newError(ResourceExhausted, err, "capture: portaudio initialize failed")
		}
	}
	libraryGuard.count++
	return nil
}

// releaseLibrary decrements the refcount and terminates the backend once it
// reaches zero. A failed acquireLibrary must not be paired with a release.
func releaseLibrary() error {
	libraryGuard.mu.Lock()
	defer libraryGuard.mu.Unlock()

	if libraryGuard.count == 0 {
		return nil
	}
	libraryGuard.count--
	if libraryGuard.count == 0 {
		if err := paTerminate(); err != nil {
			return newError(ResourceExhausted, err, "capture: portaudio terminate failed")
		}
	}
	return nil
}
