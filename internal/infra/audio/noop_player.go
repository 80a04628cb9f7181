package audio

// NoopPlayer resolves every name and completes every clip immediately.
// It stands in for the system device on headless deployments.
type NoopPlayer struct{}

func NewNoopPlayer() *NoopPlayer {
	return &NoopPlayer{}
}

type noopClip struct {
	name string
}

func (c noopClip) Name() string { return c.name }

type noopPlayback struct{}

func (noopPlayback) Stop() {}

func (p *NoopPlayer) Resolve(name string) (Clip, error) {
	return noopClip{name: name}, nil
}

func (p *NoopPlayer) Play(clip Clip, volume float64, done func(err error)) (Playback, error) {
	go done(nil)
	return noopPlayback{}, nil
}
