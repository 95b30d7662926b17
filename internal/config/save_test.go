package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStories_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "spooky", "config.yaml")

	err := SaveStories(configPath, []StoryConfig{
		{ID: "poltergeist", Name: "👻 Poltergeist", Description: "flaky tests", Path: "p.json"},
	})
	require.NoError(t, err)

	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Len(t, cfg.Stories, 1)
	assert.Equal(t, StoryConfig{ID: "poltergeist", Name: "👻 Poltergeist", Description: "flaky tests", Path: "p.json"}, cfg.Stories[0])
}

func TestSaveStories_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my spooky settings
default_story: midnight
ui:
  show_footer: false # quiet please
stories:
  - id: old
    name: Old
    path: old.json
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	require.NoError(t, SaveStories(configPath, []StoryConfig{{ID: "new", Name: "New", Path: "new.json"}}))

	data := readFile(t, configPath)
	assert.Contains(t, data, "# my spooky settings")
	assert.Contains(t, data, "# quiet please")
	assert.NotContains(t, data, "old.json")

	cfg := loadConfigFromYAML(t, data)
	assert.Equal(t, "midnight", cfg.DefaultStory)
	assert.False(t, cfg.UI.ShowFooter)
	require.Len(t, cfg.Stories, 1)
	assert.Equal(t, "new", cfg.Stories[0].ID)
	assert.Empty(t, cfg.Stories[0].Description)
}

func TestSaveStories_QuotesNumericLookingValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveStories(configPath, []StoryConfig{{ID: "1031", Name: "true", Path: "1031.json"}}))

	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Len(t, cfg.Stories, 1)
	assert.Equal(t, "1031", cfg.Stories[0].ID)
	assert.Equal(t, "true", cfg.Stories[0].Name)
}

func TestSaveStories_RejectsNonMappingRoot(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- just\n- a list\n"), 0o644))

	err := SaveStories(configPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")
}

func TestSaveStories_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("stories: [\n"), 0o644))

	require.Error(t, SaveStories(configPath, nil))
}

func TestAddStory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := []StoryConfig{{ID: "a", Name: "A", Path: "a.json"}}

	require.NoError(t, AddStory(configPath, StoryConfig{ID: "b", Name: "B", Path: "b.json"}, existing))
	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Len(t, cfg.Stories, 2)
	assert.Equal(t, "b", cfg.Stories[1].ID)
	assert.Len(t, existing, 1, "input slice untouched")

	err := AddStory(configPath, StoryConfig{ID: "a", Name: "dup", Path: "x.json"}, cfg.Stories)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicated")
}

func TestRemoveStory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := []StoryConfig{
		{ID: "a", Name: "A", Path: "a.json"},
		{ID: "b", Name: "B", Path: "b.json"},
	}

	require.NoError(t, RemoveStory(configPath, "a", existing))
	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Len(t, cfg.Stories, 1)
	assert.Equal(t, "b", cfg.Stories[0].ID)

	require.Error(t, RemoveStory(configPath, "zzz", existing))
}

func TestSaveStories_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveStories(configPath, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yaml", entries[0].Name())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
