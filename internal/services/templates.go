package services

import (
	"sort"

	"kollab-api/internal/models"
)

// BlankTemplate is the name of the plain three-column layout.
const BlankTemplate = "Blank Workflow"

// SeedTask is a sample task a template drops into a new workflow.
type SeedTask struct {
	Title            string
	Description      string
	Priority         models.TaskPriority
	TargetColumnName string
	IsBillable       bool
	Subtasks         []string
}

// WorkflowTemplate is a column layout plus optional seed tasks.
type WorkflowTemplate struct {
	Name    string
	Columns []string
	Tasks   []SeedTask
}

var defaultColumns = []string{"To Do", "In Progress", "Done"}

var templates = map[string]WorkflowTemplate{
	BlankTemplate: {
		Name:    BlankTemplate,
		Columns: defaultColumns,
	},
	"Weekly Solo Sprint": {
		Name: "Weekly Solo Sprint",
		Columns: []string{
			"Backlog", "This Week", "Monday", "Tuesday", "Wednesday",
			"Thursday", "Friday", "Waiting On Others", "Done",
		},
		Tasks: []SeedTask{
			{Title: "Plan this week's top three outcomes", Priority: models.PriorityHigh, TargetColumnName: "This Week",
				Subtasks: []string{"Review last week's notes", "Pick three outcomes", "Block calendar time"}},
			{Title: "Clear inbox and client requests", Priority: models.PriorityMedium, TargetColumnName: "Monday"},
			{Title: "Deep work: main deliverable", Priority: models.PriorityHigh, TargetColumnName: "Tuesday", IsBillable: true},
			{Title: "Send invoices and chase payments", Priority: models.PriorityMedium, TargetColumnName: "Wednesday"},
			{Title: "Client check-in call", Priority: models.PriorityMedium, TargetColumnName: "Thursday", IsBillable: true},
			{Title: "Weekly review and retro", Priority: models.PriorityLow, TargetColumnName: "Friday"},
			{Title: "Ideas for later", Description: "Park anything that does not fit this week here.", Priority: models.PriorityLow, TargetColumnName: "Backlog"},
		},
	},
	"Client Project": {
		Name:    "Client Project",
		Columns: []string{"Backlog", "To Do", "In Progress", "Client Review", "Done"},
		Tasks: []SeedTask{
			{Title: "Kickoff call", Priority: models.PriorityHigh, TargetColumnName: "To Do", IsBillable: true},
			{Title: "Collect requirements and assets", Priority: models.PriorityHigh, TargetColumnName: "To Do"},
			{Title: "First draft of deliverable", Priority: models.PriorityMedium, TargetColumnName: "Backlog", IsBillable: true},
			{Title: "Send draft for approval", Priority: models.PriorityMedium, TargetColumnName: "Client Review"},
		},
	},
	"Content Pipeline": {
		Name:    "Content Pipeline",
		Columns: []string{"Ideas", "Drafting", "Editing", "Scheduled", "Published"},
		Tasks: []SeedTask{
			{Title: "Brainstorm next month's topics", Priority: models.PriorityMedium, TargetColumnName: "Ideas"},
			{Title: "Write first post", Priority: models.PriorityHigh, TargetColumnName: "Drafting",
				Subtasks: []string{"Outline", "Draft", "Add images"}},
			{Title: "Proofread and schedule", Priority: models.PriorityLow, TargetColumnName: "Editing"},
		},
	},
}

// LookupTemplate returns the named template, or the default three-column
// layout without seed tasks when the name is unknown or empty.
func LookupTemplate(name string) WorkflowTemplate {
	if t, ok := templates[name]; ok {
		return t
	}
	return WorkflowTemplate{Name: name, Columns: defaultColumns}
}

// TemplateNames lists the known templates alphabetically.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
