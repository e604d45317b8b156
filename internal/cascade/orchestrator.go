// Package cascade removes an account and everything hanging off it: owned
// businesses with their menus, uploaded media, the profile row, and the
// record at the external identity provider. Steps run in a fixed order and
// are graded: a fatal step aborts the cascade, a soft step records the
// failure and lets the rest proceed.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/menuforge/menuforge/internal/businesses"
	"github.com/menuforge/menuforge/internal/media"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
)

// Step names, used in errors, logs, and metric labels.
const (
	StepLocateProfile   = "locate_profile"
	StepPurgeBusinesses = "purge_businesses"
	StepListMedia       = "list_media"
	StepDeleteMedia     = "delete_media"
	StepDeleteProfile   = "delete_profile"
	StepDeleteIdentity  = "delete_identity"
)

// Outcome labels for the step recorder.
const (
	OutcomeOK       = "ok"
	OutcomeSoftFail = "soft_fail"
	OutcomeFatal    = "fatal"
)

// ProfileStore is the slice of the profiles repository the cascade needs.
type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BusinessPurger lists and destroys the account's businesses. Purge removes
// one business and its menu tree in a single transaction.
type BusinessPurger interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]businesses.Business, error)
	Purge(ctx context.Context, id uuid.UUID) error
}

// IdentityDeleter removes the account at the external identity provider.
type IdentityDeleter interface {
	DeleteIdentity(ctx context.Context, id string) error
}

// StepRecorder observes step outcomes, typically for metrics.
type StepRecorder interface {
	RecordStep(step, outcome string)
}

// StepFailure is a soft failure that did not stop the cascade.
type StepFailure struct {
	Step string
	Err  error
}

func (f StepFailure) Error() string { return fmt.Sprintf("cascade: %s: %v", f.Step, f.Err) }

func (f StepFailure) Unwrap() error { return f.Err }

// Report summarizes a completed cascade. SoftFailures is non-empty when the
// account is gone but some cleanup was left behind.
type Report struct {
	ProfileID        uuid.UUID     `json:"profile_id"`
	BusinessesPurged int           `json:"businesses_purged"`
	MediaDeleted     int           `json:"media_deleted"`
	IdentityDeleted  bool          `json:"identity_deleted"`
	SoftFailures     []StepFailure `json:"-"`
}

// Orchestrator runs account deletion cascades.
type Orchestrator struct {
	logger     *slog.Logger
	profiles   ProfileStore
	businesses BusinessPurger
	host       media.Host
	identity   IdentityDeleter
	recorder   StepRecorder
	mediaRoot  string
}

// NewOrchestrator builds an orchestrator. The recorder may be nil. mediaRoot
// is the top-level folder on the media host under which per-account assets
// live; empty selects "menuforge".
func NewOrchestrator(logger *slog.Logger, profileStore ProfileStore, businessPurger BusinessPurger, host media.Host, identity IdentityDeleter, recorder StepRecorder, mediaRoot string) *Orchestrator {
	if mediaRoot == "" {
		mediaRoot = "menuforge"
	}
	return &Orchestrator{
		logger:     logger,
		profiles:   profileStore,
		businesses: businessPurger,
		host:       host,
		identity:   identity,
		recorder:   recorder,
		mediaRoot:  mediaRoot,
	}
}

// PurgeAccount deletes the profile with the given id and everything it owns.
//
// Ordering is deliberate: database rows go bottom-up (items, categories,
// businesses, then the profile) so no step ever leaves a dangling child, and
// the identity record goes last so a crashed cascade can be retried with the
// same credentials. Retries are safe; every step tolerates already-deleted
// targets except locating the profile itself, which reports
// shared.ErrNotFound once the cascade has completed before.
func (o *Orchestrator) PurgeAccount(ctx context.Context, profileID uuid.UUID) (*Report, error) {
	report := &Report{ProfileID: profileID}

	profile, err := o.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, o.fatal(StepLocateProfile, err)
	}
	o.record(StepLocateProfile, OutcomeOK)

	owned, err := o.businesses.ListByOwner(ctx, profileID)
	if err != nil {
		return nil, o.fatal(StepPurgeBusinesses, err)
	}
	for _, b := range owned {
		if err := o.businesses.Purge(ctx, b.ID); err != nil {
			o.record(StepPurgeBusinesses, OutcomeFatal)
			return nil, fmt.Errorf("cascade: %s: business %s: %w", StepPurgeBusinesses, b.ID, err)
		}
		report.BusinessesPurged++
	}
	o.record(StepPurgeBusinesses, OutcomeOK)

	if err := o.purgeMedia(ctx, profileID, report); err != nil {
		return nil, err
	}

	if err := o.profiles.Delete(ctx, profileID); err != nil {
		return nil, o.fatal(StepDeleteProfile, err)
	}
	o.record(StepDeleteProfile, OutcomeOK)

	o.deleteIdentity(ctx, profile, report)

	o.logger.Info("account cascade complete",
		slog.String("profile_id", profileID.String()),
		slog.Int("businesses_purged", report.BusinessesPurged),
		slog.Int("media_deleted", report.MediaDeleted),
		slog.Bool("identity_deleted", report.IdentityDeleted),
		slog.Int("soft_failures", len(report.SoftFailures)))
	return report, nil
}

// purgeMedia clears the account's asset folders. A listing failure is soft:
// orphaned files cost storage, not correctness, and a later sweep can find
// them by folder. A failed delete of files we know exist is fatal.
func (o *Orchestrator) purgeMedia(ctx context.Context, profileID uuid.UUID, report *Report) error {
	for _, ns := range o.namespaces(profileID) {
		refs, err := o.host.List(ctx, ns)
		if err != nil {
			o.soft(report, StepListMedia, fmt.Errorf("namespace %s: %w", ns, err))
			continue
		}
		o.record(StepListMedia, OutcomeOK)
		if len(refs) == 0 {
			o.record(StepDeleteMedia, OutcomeOK)
			continue
		}
		if err := o.host.DeleteMany(ctx, refs); err != nil {
			o.record(StepDeleteMedia, OutcomeFatal)
			return fmt.Errorf("cascade: %s: namespace %s: %w", StepDeleteMedia, ns, err)
		}
		report.MediaDeleted += len(refs)
		o.record(StepDeleteMedia, OutcomeOK)
	}
	return nil
}

// deleteIdentity removes the identity-provider record. All failures here are
// soft: the local account is already gone, and an orphaned identity record
// cannot reach any data. Missing or malformed identity ids are skipped with
// a warning rather than reported as failures.
func (o *Orchestrator) deleteIdentity(ctx context.Context, profile *profiles.Profile, report *Report) {
	if profile.IdentityID == nil || *profile.IdentityID == "" {
		o.logger.Warn("account has no identity record, skipping provider delete",
			slog.String("profile_id", profile.ID.String()))
		o.record(StepDeleteIdentity, OutcomeOK)
		return
	}
	identityID := *profile.IdentityID
	if _, err := uuid.Parse(identityID); err != nil {
		o.logger.Warn("malformed identity id, skipping provider delete",
			slog.String("profile_id", profile.ID.String()),
			slog.String("identity_id", identityID))
		o.record(StepDeleteIdentity, OutcomeOK)
		return
	}
	if err := o.identity.DeleteIdentity(ctx, identityID); err != nil {
		o.soft(report, StepDeleteIdentity, err)
		return
	}
	report.IdentityDeleted = true
	o.record(StepDeleteIdentity, OutcomeOK)
}

// namespaces returns the media folders holding the account's uploads.
func (o *Orchestrator) namespaces(profileID uuid.UUID) []string {
	base := o.mediaRoot + "/" + profileID.String()
	return []string{base + "/logos", base + "/items"}
}

func (o *Orchestrator) fatal(step string, err error) error {
	o.record(step, OutcomeFatal)
	if step == StepLocateProfile && errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("cascade: %s: %w", step, err)
}

func (o *Orchestrator) soft(report *Report, step string, err error) {
	o.record(step, OutcomeSoftFail)
	o.logger.Warn("cascade step failed, continuing",
		slog.String("step", step),
		slog.String("profile_id", report.ProfileID.String()),
		slog.Any("error", err))
	report.SoftFailures = append(report.SoftFailures, StepFailure{Step: step, Err: err})
}

func (o *Orchestrator) record(step, outcome string) {
	if o.recorder != nil {
		o.recorder.RecordStep(step, outcome)
	}
}
