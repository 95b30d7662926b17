package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveStories replaces the stories list in the config file. Comments and
// formatting in other sections survive because the file is edited as a
// yaml.Node tree.
func SaveStories(configPath string, stories []StoryConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := setKey(&doc, "stories", buildStoriesNode(stories)); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// AddStory appends s to existing and saves. The combined list must pass
// ValidateStories.
func AddStory(configPath string, s StoryConfig, existing []StoryConfig) error {
	updated := make([]StoryConfig, 0, len(existing)+1)
	updated = append(updated, existing...)
	updated = append(updated, s)
	if err := ValidateStories(updated); err != nil {
		return err
	}
	return SaveStories(configPath, updated)
}

// RemoveStory drops the story with the given id and saves.
func RemoveStory(configPath, id string, existing []StoryConfig) error {
	updated := make([]StoryConfig, 0, len(existing))
	for _, s := range existing {
		if s.ID != id {
			updated = append(updated, s)
		}
	}
	if len(updated) == len(existing) {
		return fmt.Errorf("no custom story with id %q", id)
	}
	return SaveStories(configPath, updated)
}

// setKey replaces or appends key in the document's root mapping, creating
// the document when it is empty.
func setKey(doc *yaml.Node, key string, value *yaml.Node) error {
	if doc.Kind == 0 {
		*doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config root is not a mapping")
	}

	root := doc.Content[0]
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = value
			return nil
		}
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
	return nil
}

func buildStoriesNode(stories []StoryConfig) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(stories)),
	}

	for _, s := range stories {
		entry := &yaml.Node{Kind: yaml.MappingNode}
		entry.Content = append(entry.Content,
			scalar("id"), scalar(s.ID),
			scalar("name"), scalar(s.Name),
		)
		if s.Description != "" {
			entry.Content = append(entry.Content, scalar("description"), scalar(s.Description))
		}
		entry.Content = append(entry.Content, scalar("path"), scalar(s.Path))
		node.Content = append(node.Content, entry)
	}

	return node
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// writeAtomic writes to a temp file in the same directory and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".spooky.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
