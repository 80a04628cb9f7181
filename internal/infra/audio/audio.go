package audio

import "errors"

// ErrClipNotFound reports that no clip is registered under the requested
// name. Callers fall back to the default clip before giving up.
var ErrClipNotFound = errors.New("audio clip not found")

// Clip is a named, decoded sound ready for playback.
type Clip interface {
	Name() string
}

// Playback is a handle to one in-flight clip.
type Playback interface {
	// Stop halts playback. Safe to call more than once and after the
	// clip has finished on its own.
	Stop()
}

// Player resolves clip names and plays them. Play returns immediately;
// done is invoked asynchronously exactly once, when the clip finishes or
// is stopped.
type Player interface {
	Resolve(name string) (Clip, error)
	Play(clip Clip, volume float64, done func(err error)) (Playback, error)
}
