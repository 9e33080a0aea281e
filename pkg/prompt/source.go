package prompt

import "context"

// Source yields the library to use for a request.
type Source interface {
	Library(ctx context.Context) (*Library, error)
}

type staticSource struct {
	lib *Library
}

// Static always returns lib.
func Static(lib *Library) Source {
	return staticSource{lib: lib}
}

func (s staticSource) Library(context.Context) (*Library, error) {
	return s.lib, nil
}

// DirSource re-reads Dir on every call so prompt edits apply to the next request
// without a restart.
type DirSource struct {
	Dir string
}

func (d DirSource) Library(context.Context) (*Library, error) {
	return Load(d.Dir)
}
