package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kollab-api/internal/mailer"
	"kollab-api/internal/models"
	"kollab-api/internal/repository"
	"kollab-api/internal/summary"

	"go.uber.org/zap"
)

// ErrIncomplete marks a workflow that is due but lacks a field needed to send.
var ErrIncomplete = errors.New("workflow is missing fields required for an automated update")

// Store is the persistence the dispatcher needs.
type Store interface {
	ListAutoUpdateCandidates(ctx context.Context) ([]models.Workflow, error)
	ListTasks(ctx context.Context, workflowID string, archived bool) ([]models.Task, error)
	RecordAutoUpdateSent(ctx context.Context, workflowID string, expectedNext, sentAt, next time.Time) error
}

// RunResult counts what one pass did.
type RunResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Dispatcher sends due client updates. It has no timer of its own.
type Dispatcher struct {
	store      Store
	summarizer summary.Summarizer
	mail       mailer.Mailer
	from       string
	now        func() time.Time
	log        *zap.SugaredLogger
}

func NewDispatcher(store Store, summarizer summary.Summarizer, mail mailer.Mailer, from string, now func() time.Time, log *zap.SugaredLogger) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		store:      store,
		summarizer: summarizer,
		mail:       mail,
		from:       from,
		now:        now,
		log:        log,
	}
}

// Run processes every workflow that is due at the time of the call. A failure
// on one workflow is logged and counted; the pass moves on to the next one.
// Only a failure to list candidates aborts the pass.
func (d *Dispatcher) Run(ctx context.Context) (RunResult, error) {
	var res RunResult
	now := d.now().UTC()

	candidates, err := d.store.ListAutoUpdateCandidates(ctx)
	if err != nil {
		return res, err
	}

	for i := range candidates {
		w := &candidates[i]
		if w.AutoUpdateNextSend == nil || w.AutoUpdateNextSend.After(now) {
			continue
		}
		res.Processed++

		err := d.send(ctx, w, now)
		switch {
		case err == nil:
			res.Sent++
		case errors.Is(err, repository.ErrConflict):
			res.Skipped++
			d.log.Infow("auto-update already recorded by another pass", "workflowId", w.ID)
		default:
			if errors.Is(err, ErrIncomplete) {
				res.Skipped++
			}
			res.Errors++
			d.log.Errorw("auto-update failed", "workflowId", w.ID, "error", err)
		}
	}

	d.log.Infow("auto-update pass finished",
		"processed", res.Processed,
		"sent", res.Sent,
		"skipped", res.Skipped,
		"errors", res.Errors,
	)
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, w *models.Workflow, now time.Time) error {
	switch {
	case w.Name == "":
		return fmt.Errorf("%w: name", ErrIncomplete)
	case w.OwnerID == "":
		return fmt.Errorf("%w: ownerId", ErrIncomplete)
	case !Eligible(w, now):
		return fmt.Errorf("%w: client email", ErrIncomplete)
	}

	tasks, err := d.store.ListTasks(ctx, w.ID, false)
	if err != nil {
		return err
	}
	text, err := d.summarizer.Summarize(ctx, summary.Input{
		WorkflowName: w.Name,
		Tasks:        summary.DigestTasks(w, tasks),
	})
	if err != nil {
		return err
	}
	html, err := mailer.RenderClientUpdate(w.Name, text, now)
	if err != nil {
		return err
	}

	err = d.mail.Send(ctx, mailer.Message{
		From:    d.from,
		To:      w.AutoUpdateClientEmail,
		Subject: mailer.ClientUpdateSubject(w.Name),
		HTML:    html,
	})
	if err != nil {
		return err
	}

	next := CalculateNextSendDate(w.AutoUpdateFrequency, now)
	if err := d.store.RecordAutoUpdateSent(ctx, w.ID, *w.AutoUpdateNextSend, now, next); err != nil {
		return err
	}
	d.log.Infow("auto-update sent", "workflowId", w.ID, "to", w.AutoUpdateClientEmail, "nextSend", next)
	return nil
}
