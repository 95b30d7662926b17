package markdown

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestNew(t *testing.T) {
	r, err := New(80, "", nil)
	require.NoError(t, err)
	require.Equal(t, 80, r.Width())
	require.Equal(t, StyleDark, r.Style())
}

func TestRenderer_Render(t *testing.T) {
	for _, style := range []string{StyleDark, StyleLight, StyleNoTTY} {
		t.Run(style, func(t *testing.T) {
			r, err := New(80, style, nil)
			require.NoError(t, err)

			out, err := r.Render("# Title\n\n- Item 1\n- Item 2\n\nThis is **bold** text")
			require.NoError(t, err)
			stripped := stripANSI(out)
			require.Contains(t, stripped, "Title")
			require.Contains(t, stripped, "Item 2")
			require.Contains(t, stripped, "bold")
		})
	}
}

func TestRenderer_NoTTYHasNoEscapes(t *testing.T) {
	r, err := New(80, StyleNoTTY, nil)
	require.NoError(t, err)
	out, err := r.Render("Just **plain** text")
	require.NoError(t, err)
	require.NotContains(t, out, "\x1b[")
}

func TestRenderer_SharedCache(t *testing.T) {
	cache := NewCache()
	a, err := New(60, StyleDark, cache)
	require.NoError(t, err)
	b, err := New(80, StyleDark, cache)
	require.NoError(t, err)

	_, err = a.Render("hello")
	require.NoError(t, err)
	_, err = a.Render("hello")
	require.NoError(t, err)
	require.Equal(t, 1, cache.ItemCount())

	_, err = b.Render("hello")
	require.NoError(t, err)
	require.Equal(t, 2, cache.ItemCount(), "width is part of the key")
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	r, err := New(80, StyleDark, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Render("same *body*")
			if err == nil {
				results[i] = out
			}
		}()
	}
	wg.Wait()
	for _, out := range results {
		require.Equal(t, results[0], out)
		require.NotEmpty(t, out)
	}
}
