package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChatRequestOmitsEmptyModel(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "Hello"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"message":"Hello"}` {
		t.Errorf("got %s", data)
	}

	data, _ = json.Marshal(ChatRequest{Message: "Hello", Model: DefaultModel})
	want := `{"message":"Hello","model":"` + DefaultModel + `"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := UserMessage("hi"); m.Role != RoleUser || m.Content != "hi" {
		t.Errorf("UserMessage = %+v", m)
	}
	if m := BotMessage("yo"); m.Role != RoleBot || m.Content != "yo" {
		t.Errorf("BotMessage = %+v", m)
	}
}

func TestWorkflowDisplayColor(t *testing.T) {
	if got := (Workflow{}).DisplayColor(); got != DefaultWorkflowColor {
		t.Errorf("DisplayColor() = %s, want %s", got, DefaultWorkflowColor)
	}
	if got := (Workflow{Color: "#000000"}).DisplayColor(); got != "#000000" {
		t.Errorf("DisplayColor() = %s", got)
	}
	if got := (Workflow{ID: "abc"}).Route(); got != "/w/abc" {
		t.Errorf("Route() = %s", got)
	}
}

func TestSortByLastModified(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	workflows := []Workflow{
		{ID: "c", LastModified: base.Add(2 * time.Hour)},
		{ID: "b", LastModified: base},
		{ID: "a", LastModified: base},
		{ID: "d", LastModified: base.Add(-time.Hour)},
	}

	SortByLastModified(workflows)

	want := []string{"d", "a", "b", "c"}
	for i, id := range want {
		if workflows[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, workflows[i].ID, id)
		}
	}
}
