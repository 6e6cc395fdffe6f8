package models

import (
	"sort"
	"time"
)

// Workflow is a registry entry rendered by the sidebar
type Workflow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// DisplayColor returns the workflow colour, or the default when unset
func (w Workflow) DisplayColor() string {
	if w.Color == "" {
		return DefaultWorkflowColor
	}
	return w.Color
}

// Route returns the sidebar link for the workflow
func (w Workflow) Route() string {
	return WorkflowRoute(w.ID)
}

// SortByLastModified orders workflows in place, oldest first.
// Equal timestamps fall back to id so the order is stable across renders.
func SortByLastModified(workflows []Workflow) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i].LastModified, workflows[j].LastModified
		if a.Equal(b) {
			return workflows[i].ID < workflows[j].ID
		}
		return a.Before(b)
	})
}
