package workflows

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

// Resolve turns a CLI reference into a workflow id.
//
// Supported references, evaluated against Sorted (oldest first):
//   - "@last"  - most recently modified workflow
//   - "@first" - least recently modified workflow
//   - "1", "2" - by position (1-based)
//   - full id or an unambiguous id prefix of at least 4 characters
//   - name substring (case-insensitive, error if several match)
func (r *Registry) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	list := r.Sorted()
	if len(list) == 0 {
		return "", fmt.Errorf("no workflows found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return list[len(list)-1].ID, nil
	case "@first":
		return list[0].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(list) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(list))
		}
		return list[index-1].ID, nil
	}

	if wf, ok := matchID(list, ref); ok {
		return wf.ID, nil
	}

	refLower := strings.ToLower(ref)
	var matches []models.Workflow
	for _, wf := range list {
		if strings.Contains(strings.ToLower(wf.Name), refLower) {
			matches = append(matches, wf)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no workflow matching '%s'", apierrors.ErrWorkflowNotFound, ref)
	case 1:
		return matches[0].ID, nil
	default:
		var names []string
		for _, m := range matches {
			names = append(names, fmt.Sprintf("'%s'", m.Name))
		}
		return "", fmt.Errorf("multiple workflows match '%s': %s. Use the id or be more specific",
			ref, strings.Join(names, ", "))
	}
}

func matchID(list []models.Workflow, ref string) (models.Workflow, bool) {
	var found []models.Workflow
	for _, wf := range list {
		if wf.ID == ref {
			return wf, true
		}
		if len(ref) >= 4 && strings.HasPrefix(wf.ID, ref) {
			found = append(found, wf)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return models.Workflow{}, false
}

// ReferenceHelp describes the references Resolve accepts
func ReferenceHelp() string {
	return `Supported references:
  @last          Most recently modified workflow
  @first         Least recently modified workflow
  1, 2, 3        By position in the sidebar (1-based)
  <id>           Full id or a unique prefix (4+ characters)
  "text"         Search by name substring`
}
