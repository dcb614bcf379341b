package sam

// SpriteID is an opaque handle to a loaded sprite, owned by whatever
// resolver produced it.
type SpriteID int

const InvalidSprite SpriteID = -1

func (s SpriteID) Valid() bool {
	return s != InvalidSprite
}

// SpriteResolver turns an image path relative to the .sam file into a sprite.
type SpriteResolver interface {
	ResolveSprite(path string) SpriteID
}

// SpriteReleaser is implemented by resolvers that want their sprites back
// once the definition using them is dropped.
type SpriteReleaser interface {
	ReleaseSprite(id SpriteID)
}

// SpriteResolverFunc adapts a function to SpriteResolver
type SpriteResolverFunc func(path string) SpriteID

func (f SpriteResolverFunc) ResolveSprite(path string) SpriteID {
	return f(path)
}

// unresolved leaves every sprite invalid; a converter never needs pixels.
type unresolved struct{}

func (unresolved) ResolveSprite(string) SpriteID {
	return InvalidSprite
}
