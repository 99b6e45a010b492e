package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
)

// ErrLoginRequired signals that booking cannot proceed without a token. It is
// a redirect-to-login signal for the caller, not a logged failure.
var ErrLoginRequired = errors.New("login required to book an appointment")

// UIEvent carries the originating interaction so the overlay can anchor
// itself to the control that triggered it.
type UIEvent struct {
	Target string
	X      int
	Y      int
}

// PatientDirectory resolves the patient record behind a token.
type PatientDirectory interface {
	FetchPatientRecord(ctx context.Context, token string) (*scheduling.PatientRecord, error)
}

// Overlay is the external booking overlay. Fire-and-forget from the
// orchestrator's point of view.
type Overlay interface {
	ShowBookingOverlay(evt UIEvent, d scheduling.Doctor, p scheduling.PatientRecord)
}

// Orchestrator sequences the booking handoff: token gate, patient-record
// fetch, overlay. Each step is a hard gate; a failure aborts the rest and the
// user re-triggers, there are no retries here.
type Orchestrator struct {
	tokens   session.TokenSource
	patients PatientDirectory
	overlay  Overlay
	log      zerolog.Logger
}

func NewOrchestrator(tokens session.TokenSource, patients PatientDirectory, overlay Overlay, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		tokens:   tokens,
		patients: patients,
		overlay:  overlay,
		log:      log.With().Str("component", "booking").Logger(),
	}
}

// InitiateBooking turns a Book Now activation into an open overlay. The token
// is re-read from ambient state here, at the point of use: the user may have
// logged out since the card was rendered.
func (o *Orchestrator) InitiateBooking(ctx context.Context, d scheduling.Doctor, evt UIEvent) error {
	token, ok := o.tokens.CurrentToken(ctx)
	if !ok {
		return ErrLoginRequired
	}

	record, err := o.patients.FetchPatientRecord(ctx, token)
	if err != nil {
		o.log.Error().Err(err).Int64("doctor_id", d.ID).Msg("patient record fetch failed, booking aborted")
		return fmt.Errorf("fetch patient record: %w", err)
	}

	o.overlay.ShowBookingOverlay(evt, d, *record)
	return nil
}
