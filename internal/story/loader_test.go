package story

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedLoader(t *testing.T) {
	l := EmbeddedLoader{}
	require.False(t, l.Async())

	reg, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"midnight", "uuid"}, reg.IDs())
}

func TestFetchLoader_SingleIssueOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(singleIssue))
	}))
	defer srv.Close()

	l := FetchLoader{Location: srv.URL, StoryID: "ci", DisplayName: "👻 CI", DefaultID: "uuid", Base: EmbeddedLoader{}}
	require.True(t, l.Async())

	reg, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"midnight", "uuid", "ci"}, reg.IDs())

	e, ok := reg.Get("ci")
	require.True(t, ok)
	require.Equal(t, "👻 CI", e.DisplayName)
	require.Equal(t, 7, e.Issue.Number)
}

func TestFetchLoader_SingleIssueDefaultsToDefaultID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issue.json")
	require.NoError(t, os.WriteFile(path, []byte(singleIssue), 0o600))

	l := FetchLoader{Location: "file://" + path, DefaultID: "uuid", Base: EmbeddedLoader{}}
	reg, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"midnight", "uuid"}, reg.IDs())

	e, _ := reg.Get("uuid")
	require.Equal(t, 7, e.Issue.Number, "fetched record replaces the base story")
}

func TestFetchLoader_FailureYieldsErrorStory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := FetchLoader{Location: srv.URL, DefaultID: "uuid"}
	reg, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrLoad)
	require.NotNil(t, reg)
	require.Equal(t, []string{"uuid"}, reg.IDs())

	e, _ := reg.Get("uuid")
	require.Equal(t, ErrorStoryTitle, e.Issue.Title)
	require.Equal(t, StateOpen, e.Issue.State)
	require.Contains(t, e.Issue.Body, "HTTP 404")
}

func TestFetchLoader_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"number": 1, "state": "haunted"}`), 0o600))

	reg, err := FetchLoader{Location: path, DefaultID: "uuid"}.Load(context.Background())
	require.ErrorIs(t, err, ErrInvalidState)
	e, _ := reg.Get("uuid")
	require.Contains(t, e.Issue.Body, "invalid issue state")
}

func TestFetchLoader_NoLocation(t *testing.T) {
	reg, err := FetchLoader{}.Load(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"error"}, reg.IDs())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(singleIssue), 0o600))

	e, err := LoadFile(path, "ghost", "Ghost", "")
	require.NoError(t, err)
	require.Equal(t, "ghost", e.ID)
	require.Equal(t, "Ghost", e.DisplayName)
	require.True(t, e.Custom)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), "x", "", "")
	require.Error(t, err)
}
