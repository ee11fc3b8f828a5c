package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/costantinoai/evolution-mail-translate/internal/provider"
)

// ActivityState is the lifecycle state of a user-visible activity.
type ActivityState int

const (
	ActivityRunning ActivityState = iota
	ActivityCompleted
	ActivityCancelled
)

func (s ActivityState) String() string {
	switch s {
	case ActivityRunning:
		return "running"
	case ActivityCompleted:
		return "completed"
	case ActivityCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Activity is a progress record shown to the user while a translation runs.
type Activity struct {
	ID         string
	Text       string
	State      ActivityState
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Reporter receives activity updates. Report is called once when the
// activity starts and once when it finishes, the second time from the
// provider's goroutine.
type Reporter interface {
	Report(a Activity)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(a Activity)

// Report calls f(a).
func (f ReporterFunc) Report(a Activity) { f(a) }

// TranslateDocumentWithActivity behaves like TranslateDocument and also
// reports a Running activity that moves to Completed, or Cancelled when the
// translation was cancelled, before onComplete runs.
func (o *Orchestrator) TranslateDocumentWithActivity(
	ctx context.Context,
	html string,
	reporter Reporter,
	onComplete provider.Callback,
) (*provider.Operation, error) {
	p, req, err := o.prepare(html)
	if err != nil || p == nil {
		return nil, err
	}

	activity := Activity{
		ID:        uuid.NewString(),
		Text:      fmt.Sprintf("Translating message with %s…", p.DisplayName()),
		State:     ActivityRunning,
		StartedAt: time.Now(),
	}
	if reporter != nil {
		reporter.Report(activity)
	}

	wrapped := func(cb provider.Provider, op *provider.Operation) {
		_, opErr := op.Wait()

		finished := activity
		finished.FinishedAt = time.Now()
		finished.Err = opErr
		switch {
		case provider.IsKind(opErr, provider.Cancelled):
			finished.State = ActivityCancelled
			finished.Text = "Translation cancelled"
		case opErr != nil:
			finished.State = ActivityCompleted
			finished.Text = fmt.Sprintf("Translation failed: %v", opErr)
		default:
			finished.State = ActivityCompleted
			finished.Text = "Translation complete"
		}
		if reporter != nil {
			reporter.Report(finished)
		}

		if onComplete != nil {
			onComplete(cb, op)
		}
	}

	return o.start(ctx, p, req, wrapped), nil
}
