package deploy

import (
	"context"
	"fmt"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/internal/logger"
	"github.com/stateset/stateset/internal/remote"
	"github.com/stateset/stateset/internal/storage"
	"github.com/stateset/stateset/pkg/types"
)

// PromoteOptions carries the knobs of one promotion attempt.
type PromoteOptions struct {
	Mode           types.DeploymentMode
	Source         string
	DryRun         bool
	Strict         bool
	IncludeSecrets bool
	Yes            bool
}

// PromoteOutcome reports the preview and, when the run went through, the
// real apply result.
type PromoteOutcome struct {
	Source  string
	Preview *types.ImportResult
	Applied *types.ImportResult
}

// ApproveOverrides rebinds a deployment's source or flags at approval
// time. Nil pointers keep the stored values.
type ApproveOverrides struct {
	Source         string
	Strict         *bool
	IncludeSecrets *bool
}

// Orchestrator drives deployments through their state machine, calling the
// export/import collaborators and recording outcomes in the store.
type Orchestrator struct {
	store    *Store
	resolver *Resolver
	remote   remote.Service
	log      logger.Logger
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(store *Store, snapshots *storage.Store, svc remote.Service, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		resolver: NewResolver(snapshots, svc),
		remote:   svc,
		log:      log,
	}
}

// Promote runs the direct promotion path: resolve the source, preview via
// a dry-run import, then apply for real if confirmed. No deployment record
// is persisted on this path.
//
// With DryRun set the run stops after the preview. Without DryRun, Yes is
// required before anything is applied. In strict mode any import failure
// escalates to a hard error.
func (o *Orchestrator) Promote(ctx context.Context, opts PromoteOptions) (*PromoteOutcome, error) {
	bundle, source, cleanup, err := o.resolver.Resolve(ctx, opts.Source, opts.IncludeSecrets)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	o.log.WithFields(map[string]any{"mode": string(opts.Mode), "source": source}).Info("previewing promotion")

	preview, err := o.remote.ImportState(ctx, bundle, types.ImportOptions{DryRun: true, Strict: opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("preview failed: %w", err)
	}

	outcome := &PromoteOutcome{Source: source, Preview: preview}

	if opts.DryRun {
		if err := escalateStrict(opts.Strict, preview); err != nil {
			return outcome, err
		}
		return outcome, nil
	}

	if !opts.Yes {
		return outcome, sserrors.New(sserrors.ErrorTypeValidation, "confirmation required").
			WithCause("refusing to apply without --yes").
			WithSolutions("Re-run with --yes to apply", "Re-run with --dry-run to preview only")
	}

	applied, err := o.remote.ImportState(ctx, bundle, types.ImportOptions{DryRun: false, Strict: opts.Strict})
	if err != nil {
		return outcome, fmt.Errorf("apply failed: %w", err)
	}
	outcome.Applied = applied

	if err := escalateStrict(opts.Strict, applied); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Schedule parses the when-expression and persists a scheduled deployment
// carrying the promotion flags for later approval.
func (o *Orchestrator) Schedule(opts PromoteOptions, whenExpr string) (*types.Deployment, error) {
	when, err := ParseWhen(whenExpr, time.Now())
	if err != nil {
		return nil, err
	}

	return o.store.Create(types.Deployment{
		Mode:           opts.Mode,
		Source:         opts.Source,
		Status:         types.StatusScheduled,
		ScheduledFor:   &when,
		DryRun:         opts.DryRun,
		Strict:         opts.Strict,
		IncludeSecrets: opts.IncludeSecrets,
		Yes:            opts.Yes,
	})
}

// Approve transitions a scheduled deployment to approved and immediately
// runs the full preview-then-apply sequence with confirmation forced.
// Approval always applies for real: a record scheduled as a dry run is
// promoted with a non-dry-run import, never just the preview. On success
// the record lands in applied; on any failure it lands in failed with the
// error captured, and the error is returned to the caller.
func (o *Orchestrator) Approve(ctx context.Context, id string, mode types.DeploymentMode, overrides ApproveOverrides) (*types.Deployment, error) {
	d, err := o.store.Get(id)
	if err != nil {
		return nil, err
	}

	if d.Mode != mode {
		return nil, sserrors.Newf(sserrors.ErrorTypeStateTransition,
			"deployment %s is a %s, not a %s", d.ID, d.Mode, mode)
	}
	if d.Status == types.StatusApplied {
		return nil, sserrors.Newf(sserrors.ErrorTypeStateTransition,
			"deployment %s is already applied", d.ID)
	}
	if d.Status != types.StatusScheduled && d.Status != types.StatusApproved {
		return nil, sserrors.Newf(sserrors.ErrorTypeStateTransition,
			"cannot approve deployment %s in status %s", d.ID, d.Status)
	}

	source := d.Source
	if overrides.Source != "" {
		source = overrides.Source
	}
	if source == "" {
		return nil, sserrors.Newf(sserrors.ErrorTypeValidation,
			"deployment %s has no source to promote", d.ID)
	}

	strict := d.Strict
	if overrides.Strict != nil {
		strict = *overrides.Strict
	}
	includeSecrets := d.IncludeSecrets
	if overrides.IncludeSecrets != nil {
		includeSecrets = *overrides.IncludeSecrets
	}

	now := time.Now()
	d, err = o.store.Update(d.ID, func(rec *types.Deployment) {
		rec.Status = types.StatusApproved
		rec.ApprovedAt = &now
		rec.Source = source
		rec.Strict = strict
		rec.IncludeSecrets = includeSecrets
		rec.DryRun = false
		rec.Yes = true
	})
	if err != nil {
		return nil, err
	}

	_, promoteErr := o.Promote(ctx, PromoteOptions{
		Mode:           d.Mode,
		Source:         source,
		Strict:         strict,
		IncludeSecrets: includeSecrets,
		Yes:            true,
	})
	if promoteErr != nil {
		failed, updateErr := o.store.Update(d.ID, func(rec *types.Deployment) {
			rec.Status = types.StatusFailed
			rec.Error = promoteErr.Error()
		})
		if updateErr != nil {
			o.log.Error("failed to record deployment failure", updateErr)
			return d, promoteErr
		}
		return failed, promoteErr
	}

	appliedAt := time.Now()
	return o.store.Update(d.ID, func(rec *types.Deployment) {
		rec.Status = types.StatusApplied
		rec.AppliedAt = &appliedAt
		rec.Error = ""
	})
}

// Cancel moves a scheduled or approved deployment to cancelled. Terminal
// records are rejected without mutation.
func (o *Orchestrator) Cancel(id string) (*types.Deployment, error) {
	d, err := o.store.Get(id)
	if err != nil {
		return nil, err
	}

	if d.Status != types.StatusScheduled && d.Status != types.StatusApproved {
		return nil, sserrors.Newf(sserrors.ErrorTypeStateTransition,
			"cannot cancel deployment %s in status %s", d.ID, d.Status)
	}

	return o.store.Update(d.ID, func(rec *types.Deployment) {
		rec.Status = types.StatusCancelled
	})
}

// escalateStrict turns partial import failures into a hard error when
// strict mode was requested. Otherwise failures are left for the caller to
// report.
func escalateStrict(strict bool, result *types.ImportResult) error {
	if !strict || len(result.Failures) == 0 {
		return nil
	}
	return sserrors.Newf(sserrors.ErrorTypeImportFailure,
		"%d entities failed to import in strict mode", len(result.Failures)).
		WithCause(firstFailureReason(result)).
		WithSolutions("Inspect the failure list and fix the offending entities", "Re-run without --strict to tolerate partial failures")
}

func firstFailureReason(result *types.ImportResult) string {
	if len(result.Failures) == 0 {
		return ""
	}
	f := result.Failures[0]
	return fmt.Sprintf("%s: %s", f.Collection, f.Reason)
}
