package services

import (
	"context"
	"testing"
	"time"

	"kollab-api/internal/models"
	"kollab-api/internal/realtime"
	"kollab-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_CopiesOwnerAndAppendsToColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)

	first := f.task(t, "owner-1", w.ID, "", "first")
	second := f.task(t, "owner-1", w.ID, w.Columns[0].ID, "second")

	assert.Equal(t, "owner-1", first.OwnerID)
	assert.Equal(t, w.Columns[0].ID, first.ColumnID)
	assert.Equal(t, models.PriorityMedium, first.Priority)
	assert.False(t, first.IsCompleted)
	assert.False(t, first.IsArchived)
	assert.Empty(t, first.Subtasks)
	assert.Empty(t, first.Comments)

	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, stored.Columns[0].TaskIDs)
	f.requireConsistent(t, w.ID)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)

	_, err := f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: w.ID, Title: " "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: w.ID, Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: w.ID, ColumnID: "elsewhere", Title: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.CreateTask(ctx, "intruder", CreateTaskInput{WorkflowID: w.ID, Title: "x"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := f.store.ListTasks(ctx, w.ID, false)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMoveTask_AcrossColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	todo, doing := w.Columns[0].ID, w.Columns[1].ID

	a := f.task(t, "owner-1", w.ID, todo, "a")
	b := f.task(t, "owner-1", w.ID, doing, "b")
	c := f.task(t, "owner-1", w.ID, doing, "c")

	moved, err := f.tasks.MoveTask(ctx, "owner-1", a.ID, todo, doing, c.ID)
	require.NoError(t, err)
	assert.Equal(t, doing, moved.ColumnID)

	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Columns[0].TaskIDs)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, stored.Columns[1].TaskIDs)

	reloaded, err := f.store.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, doing, reloaded.ColumnID)
	f.requireConsistent(t, w.ID)
	assert.Contains(t, f.events.types(), realtime.TaskMoved)
}

func TestMoveTask_AppendsWithoutTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	done := w.Columns[2].ID
	a := f.task(t, "owner-1", w.ID, "", "a")
	b := f.task(t, "owner-1", w.ID, done, "b")

	_, err := f.tasks.MoveTask(ctx, "owner-1", a.ID, "", done, "")
	require.NoError(t, err)

	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, stored.Columns[2].TaskIDs)
	f.requireConsistent(t, w.ID)
}

func TestMoveTask_ReorderWithinColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	col := w.Columns[0].ID
	a := f.task(t, "owner-1", w.ID, col, "a")
	b := f.task(t, "owner-1", w.ID, col, "b")
	c := f.task(t, "owner-1", w.ID, col, "c")

	_, err := f.tasks.MoveTask(ctx, "owner-1", c.ID, col, col, a.ID)
	require.NoError(t, err)
	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, stored.Columns[0].TaskIDs)

	// dropping a task onto itself leaves the order alone
	_, err = f.tasks.MoveTask(ctx, "owner-1", a.ID, col, col, a.ID)
	require.NoError(t, err)
	stored, err = f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, stored.Columns[0].TaskIDs)
	f.requireConsistent(t, w.ID)
}

func TestMoveTask_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, w.Columns[0].ID, "a")

	_, err := f.tasks.MoveTask(ctx, "owner-1", a.ID, w.Columns[1].ID, w.Columns[2].ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.MoveTask(ctx, "owner-1", a.ID, "", "not-a-column", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.MoveTask(ctx, "intruder", a.ID, "", w.Columns[2].ID, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.tasks.MoveTask(ctx, "owner-1", "missing", "", w.Columns[2].ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.store.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Columns[0].ID, stored.ColumnID)
	f.requireConsistent(t, w.ID)
}

func TestArchiveAndUnarchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")
	b := f.task(t, "owner-1", w.ID, "", "b")

	archived, err := f.tasks.ArchiveTask(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)
	assert.True(t, archived.ArchivedAt.Equal(f.clock.Now()))

	active, err := f.tasks.ListActiveTasks(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	hidden, err := f.tasks.ListArchivedTasks(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	assert.Equal(t, a.ID, hidden[0].ID)

	got, err := f.tasks.GetTask(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
	assert.NotNil(t, got.ArchivedAt)
	f.requireConsistent(t, w.ID)

	restored, err := f.tasks.UnarchiveTask(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Nil(t, restored.ArchivedAt)

	active, err = f.tasks.ListActiveTasks(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestUpdateTask_MergesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")

	title := "renamed"
	prio := models.PriorityUrgent
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	billable := true
	updated, err := f.tasks.UpdateTask(ctx, "owner-1", a.ID, TaskPatch{
		Title:      &title,
		Priority:   &prio,
		DueDate:    &due,
		IsBillable: &billable,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.PriorityUrgent, updated.Priority)
	assert.True(t, updated.IsBillable)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))

	bad := models.TaskPriority("someday")
	_, err = f.tasks.UpdateTask(ctx, "owner-1", a.ID, TaskPatch{Priority: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	cleared, err := f.tasks.UpdateTask(ctx, "owner-1", a.ID, TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, "renamed", cleared.Title)

	toggled, err := f.tasks.ToggleTaskCompleted(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
}

func TestSubtasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")

	withSub, err := f.tasks.AddSubtask(ctx, "owner-1", a.ID, "draft outline")
	require.NoError(t, err)
	require.Len(t, withSub.Subtasks, 1)
	subID := withSub.Subtasks[0].ID

	toggled, err := f.tasks.ToggleSubtask(ctx, "owner-1", a.ID, subID)
	require.NoError(t, err)
	assert.True(t, toggled.Subtasks[0].Completed)

	_, err = f.tasks.ToggleSubtask(ctx, "owner-1", a.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := f.tasks.DeleteSubtask(ctx, "owner-1", a.ID, subID)
	require.NoError(t, err)
	assert.Empty(t, removed.Subtasks)
}

func TestAddComment_FreezesAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Login(ctx, Identity{ID: "owner-1", DisplayName: "Ada", AvatarURL: "https://img/ada.png"})
	require.NoError(t, err)
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")

	commented, err := f.tasks.AddComment(ctx, "owner-1", a.ID, "looks good")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "Ada", commented.Comments[0].UserName)
	assert.Equal(t, "https://img/ada.png", commented.Comments[0].UserAvatar)

	_, err = f.accounts.Login(ctx, Identity{ID: "owner-1", DisplayName: "Ada Lovelace"})
	require.NoError(t, err)

	got, err := f.tasks.GetTask(ctx, "owner-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Comments[0].UserName)

	_, err = f.tasks.AddComment(ctx, "owner-1", a.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddComment_UnknownAuthorFallsBackToID(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")

	commented, err := f.tasks.AddComment(context.Background(), "owner-1", a.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", commented.Comments[0].UserName)
}

func TestDeleteTask_RemovesFromColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	a := f.task(t, "owner-1", w.ID, "", "a")
	b := f.task(t, "owner-1", w.ID, "", "b")

	require.ErrorIs(t, f.tasks.DeleteTask(ctx, "intruder", a.ID), ErrPermissionDenied)
	require.NoError(t, f.tasks.DeleteTask(ctx, "owner-1", a.ID))

	_, err := f.store.GetTask(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, stored.Columns[0].TaskIDs)
	f.requireConsistent(t, w.ID)

	assert.ErrorIs(t, f.tasks.DeleteTask(ctx, "owner-1", a.ID), ErrNotFound)
}

func TestListCalendarTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	day := func(d int) *time.Time {
		v := time.Date(2025, 4, d, 9, 0, 0, 0, time.UTC)
		return &v
	}

	mk := func(title string, due *time.Time) *models.Task {
		task, err := f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: w.ID, Title: title, DueDate: due})
		require.NoError(t, err)
		return task
	}
	late := mk("late", day(20))
	early := mk("early", day(15))
	mk("outside", day(30))
	mk("undated", nil)
	archived := mk("archived", day(16))
	_, err := f.tasks.ArchiveTask(ctx, "owner-1", archived.ID)
	require.NoError(t, err)

	from := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC)
	got, err := f.tasks.ListCalendarTasks(ctx, "owner-1", from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)

	others, err := f.tasks.ListCalendarTasks(ctx, "someone-else", from, to)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = f.tasks.ListCalendarTasks(ctx, "owner-1", to, from)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTask_WorkflowSaveFailureLeavesNoTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	existing := f.task(t, "owner-1", w.ID, "", "already here")
	require.NoError(t, testutil.FailUpdatesOn(f.db, "workflows"))

	_, err := f.tasks.CreateTask(ctx, "owner-1", CreateTaskInput{WorkflowID: w.ID, Title: "lost"})
	require.ErrorIs(t, err, ErrTransientStore)

	tasks, err := f.store.ListTasks(ctx, w.ID, false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, existing.ID, tasks[0].ID)

	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{existing.ID}, stored.Columns[0].TaskIDs)
	f.requireConsistent(t, w.ID)
}

func TestMoveTask_TaskSaveFailureKeepsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow(t, "owner-1", BlankTemplate)
	todo, doing := w.Columns[0].ID, w.Columns[1].ID
	a := f.task(t, "owner-1", w.ID, todo, "a")
	b := f.task(t, "owner-1", w.ID, todo, "b")
	require.NoError(t, testutil.FailUpdatesOn(f.db, "tasks"))

	_, err := f.tasks.MoveTask(ctx, "owner-1", a.ID, todo, doing, "")
	require.ErrorIs(t, err, ErrTransientStore)

	stored, err := f.store.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, stored.Columns[0].TaskIDs)
	assert.Empty(t, stored.Columns[1].TaskIDs)

	moved, err := f.store.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, todo, moved.ColumnID)
	f.requireConsistent(t, w.ID)
	assert.NotContains(t, f.events.types(), realtime.TaskMoved)
}
