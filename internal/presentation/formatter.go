// Package presentation formats stories for command output.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatStories formats a list of stories as JSON
func (f *Formatter) FormatStories(stories []StoryDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stories)
}

// FormatStoriesTable writes one row per story: jump key, id, name, state
// and description. Only the first nine stories get a jump key.
func (f *Formatter) FormatStoriesTable(stories []StoryDTO) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers("KEY", "ID", "NAME", "STATE", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for i, s := range stories {
		key := ""
		if i < 9 {
			key = "alt+" + strconv.Itoa(i+1)
		}
		id := s.ID
		if s.Custom {
			id += " *"
		}
		t.Row(key, id, s.Name, s.State, s.Description)
	}

	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}
