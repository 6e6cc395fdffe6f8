// Package models contains data types and constants shared by the chat widget,
// the backend and the workflow registry.
package models

// Endpoints and defaults for the chat exchange
const (
	DefaultChatEndpoint  = "http://localhost:8000/api/chat"
	DefaultAgentEndpoint = "http://localhost:8000/api/agent"
	OpenRouterBaseURL    = "https://openrouter.ai/api/v1"

	// DefaultModel is the model the assistant widget and the backend fall back to
	DefaultModel = "mistralai/mistral-small-3.1-24b-instruct:free"

	// SystemPrompt is prepended by the backend to every upstream completion
	SystemPrompt = "You are a helpful AI assistant."

	// FallbackReply is the only failure text the widget ever shows
	FallbackReply = "Oops! Something went wrong."
)

// Sidebar routes
const (
	RouteHome   = "/w/1"
	RouteAgents = "/w/agents"
	RouteLogs   = "/w/logs"
	RouteChat   = "/chat"
)

// DefaultWorkflowColor is used when a workflow has no colour of its own
const DefaultWorkflowColor = "#3972F6"

// WorkflowPalette is the colour rotation for newly created workflows
var WorkflowPalette = []string{
	"#3972F6",
	"#F639DD",
	"#F6B539",
	"#8139F6",
	"#39B54A",
	"#39B5AB",
	"#F66839",
}

// WorkflowRoute returns the sidebar route for a workflow id
func WorkflowRoute(id string) string {
	return "/w/" + id
}
