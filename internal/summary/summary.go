// Package summary drafts client-facing progress summaries for a workflow.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kollab-api/internal/models"
)

var (
	// ErrEmptySummary is returned when the model produced no usable text.
	ErrEmptySummary = errors.New("summary generation returned no text")
	// ErrNotConfigured is returned by Disabled.
	ErrNotConfigured = errors.New("summary generation is not configured")
)

// Summarizer turns a workflow snapshot into free text.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (string, error)
}

// Input is everything the prompt is built from.
type Input struct {
	WorkflowName string
	Tasks        []TaskDigest
	// Context holds optional free-form notes from the requester,
	// e.g. "client asked about launch date".
	Context []string
}

// TaskDigest is the slice of a task that is relevant to a client.
type TaskDigest struct {
	Title             string
	Status            string
	Priority          models.TaskPriority
	DueDate           *time.Time
	Completed         bool
	ClientName        string
	SubtasksDone      int
	SubtasksTotal     int
	Deliverables      []string
	LatestCommentText string
}

// DigestTasks maps tasks onto digests, naming each task's status after its
// column. Tasks are ordered by column position, then by their place in it.
func DigestTasks(w *models.Workflow, tasks []models.Task) []TaskDigest {
	columnName := make(map[string]string, len(w.Columns))
	rank := make(map[string]int)
	pos := 0
	for _, col := range w.Columns {
		columnName[col.ID] = col.Name
		for _, id := range col.TaskIDs {
			rank[id] = pos
			pos++
		}
	}

	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, okI := rank[sorted[i].ID]
		rj, okJ := rank[sorted[j].ID]
		if okI != okJ {
			return okI
		}
		return ri < rj
	})

	out := make([]TaskDigest, 0, len(sorted))
	for _, t := range sorted {
		d := TaskDigest{
			Title:         t.Title,
			Status:        columnName[t.ColumnID],
			Priority:      t.Priority,
			DueDate:       t.DueDate,
			Completed:     t.IsCompleted,
			ClientName:    t.ClientName,
			SubtasksTotal: len(t.Subtasks),
			Deliverables:  t.Deliverables,
		}
		for _, st := range t.Subtasks {
			if st.Completed {
				d.SubtasksDone++
			}
		}
		if n := len(t.Comments); n > 0 {
			d.LatestCommentText = t.Comments[n-1].Text
		}
		out = append(out, d)
	}
	return out
}

const systemPrompt = `You write short, friendly progress updates that a freelancer sends to a client.
Group the work into completed, in progress and upcoming. Mention due dates when they are close.
Do not invent tasks. Reply with plain prose and simple bullet lists, no markdown headings.`

// BuildPrompt renders the system and user prompts for in.
func BuildPrompt(in Input) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow: %s\n", in.WorkflowName)
	if len(in.Tasks) == 0 {
		b.WriteString("There are no active tasks.\n")
	} else {
		b.WriteString("Tasks:\n")
	}
	for _, t := range in.Tasks {
		fmt.Fprintf(&b, "- %s [status: %s, priority: %s", t.Title, orDash(t.Status), orDash(string(t.Priority)))
		if t.Completed {
			b.WriteString(", completed")
		}
		if t.DueDate != nil {
			fmt.Fprintf(&b, ", due %s", t.DueDate.Format("2006-01-02"))
		}
		if t.ClientName != "" {
			fmt.Fprintf(&b, ", client: %s", t.ClientName)
		}
		if t.SubtasksTotal > 0 {
			fmt.Fprintf(&b, ", subtasks %d/%d", t.SubtasksDone, t.SubtasksTotal)
		}
		b.WriteString("]\n")
		if len(t.Deliverables) > 0 {
			fmt.Fprintf(&b, "  deliverables: %s\n", strings.Join(t.Deliverables, "; "))
		}
		if t.LatestCommentText != "" {
			fmt.Fprintf(&b, "  latest note: %s\n", t.LatestCommentText)
		}
	}
	var notes []string
	for _, c := range in.Context {
		if c = strings.TrimSpace(c); c != "" {
			notes = append(notes, c)
		}
	}
	if len(notes) > 0 {
		b.WriteString("Additional context:\n")
		for _, c := range notes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return systemPrompt, b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Disabled is used when no model endpoint is configured.
type Disabled struct{}

func (Disabled) Summarize(context.Context, Input) (string, error) {
	return "", ErrNotConfigured
}
