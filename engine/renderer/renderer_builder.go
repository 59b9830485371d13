package renderer

// RendererOption configures a Renderer during construction.
type RendererOption func(*rendererBuilder)

type rendererBuilder struct {
	presentMode          PresentMode
	forceFallbackAdapter bool
}

// WithPresentMode sets the surface presentation mode. The default is
// PresentModeVSync.
func WithPresentMode(mode PresentMode) RendererOption {
	return func(b *rendererBuilder) {
		b.presentMode = mode
	}
}

// WithForceFallbackAdapter forces adapter selection onto the software fallback
// adapter. Useful for environments without a physical GPU.
func WithForceFallbackAdapter() RendererOption {
	return func(b *rendererBuilder) {
		b.forceFallbackAdapter = true
	}
}
