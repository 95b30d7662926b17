package presentation

import (
	"github.com/zjrosen/spooky/internal/story"
)

// StoryDTO represents a registered story for presentation
type StoryDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Custom      bool     `json:"custom"`
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	State       string   `json:"state"`
	Comments    int      `json:"comments"`
	Labels      []string `json:"labels"`
}

// FromEntry converts a registry entry to a DTO.
func FromEntry(e story.Entry) StoryDTO {
	dto := StoryDTO{
		ID:          e.ID,
		Name:        e.DisplayName,
		Description: e.Description,
		Custom:      e.Custom,
		Labels:      []string{},
	}
	if e.Issue == nil {
		return dto
	}
	dto.Number = e.Issue.Number
	dto.Title = e.Issue.Title
	dto.State = string(e.Issue.State)
	dto.Comments = len(e.Issue.Comments)
	for _, l := range e.Issue.Labels {
		dto.Labels = append(dto.Labels, l.Name)
	}
	return dto
}

// FromRegistry converts every entry in registration order.
func FromRegistry(reg *story.Registry) []StoryDTO {
	entries := reg.Entries()
	dtos := make([]StoryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, FromEntry(e))
	}
	return dtos
}
