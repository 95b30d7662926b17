package story

import (
	_ "embed"
	"sync"
)

//go:embed data/stories.json
var embeddedStories []byte

var (
	embeddedOnce    sync.Once
	embeddedEntries []Entry
	embeddedErr     error
)

// Embedded returns the stories compiled into the binary, decoded once.
func Embedded() ([]Entry, error) {
	embeddedOnce.Do(func() {
		embeddedEntries, embeddedErr = DecodeDocument(embeddedStories)
	})
	if embeddedErr != nil {
		return nil, embeddedErr
	}
	out := make([]Entry, len(embeddedEntries))
	copy(out, embeddedEntries)
	return out, nil
}
