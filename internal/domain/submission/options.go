package submission

// Option applies a configuration option to the guard.
type Option func(*memoryGuard)

// WithMaxSize bounds how many round ids are remembered. When full, the
// oldest claim is forgotten. A value <= 0 keeps every claim.
func WithMaxSize(maxSize int) Option {
	return func(g *memoryGuard) {
		g.maxSize = maxSize
	}
}
