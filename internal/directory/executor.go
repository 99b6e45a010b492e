package directory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/booking"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
)

// LoginPromptMessage is surfaced when a not-logged-in patient tries to book.
const LoginPromptMessage = "Patient needs to login first."

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier surfaces a user-visible message.
type Notifier interface {
	Notify(msg string)
}

// CardSurface is the container holding the rendered cards. RemoveCard is only
// invoked after the delete collaborator reports success.
type CardSurface interface {
	RemoveCard(doctorID int64)
}

// DoctorRemover is the delete-doctor collaborator.
type DoctorRemover interface {
	DeleteDoctor(ctx context.Context, id int64, token string) (scheduling.DeleteResult, error)
}

// BookingStarter hands a Book Now activation to the booking orchestrator.
type BookingStarter interface {
	InitiateBooking(ctx context.Context, d scheduling.Doctor, evt booking.UIEvent) error
}

// Executor performs card actions. BuildCard stays pure; everything with a
// side effect lands here.
type Executor struct {
	confirmer Confirmer
	notifier  Notifier
	surface   CardSurface
	remover   DoctorRemover
	booking   BookingStarter
	log       zerolog.Logger
}

func NewExecutor(confirmer Confirmer, notifier Notifier, surface CardSurface, remover DoctorRemover, starter BookingStarter, log zerolog.Logger) *Executor {
	return &Executor{
		confirmer: confirmer,
		notifier:  notifier,
		surface:   surface,
		remover:   remover,
		booking:   starter,
		log:       log.With().Str("component", "directory").Logger(),
	}
}

// Execute performs one activated action. The switch is exhaustive over
// ActionKind; an unknown kind is a programming error, not a silent no-op.
func (e *Executor) Execute(ctx context.Context, act Action, evt booking.UIEvent) error {
	switch act.Kind {
	case ActionNone:
		return nil
	case ActionPromptLogin:
		e.notifier.Notify(LoginPromptMessage)
		return nil
	case ActionDelete:
		e.executeDelete(ctx, act)
		return nil
	case ActionBook:
		if act.Doctor == nil {
			return fmt.Errorf("book action without a doctor")
		}
		return e.booking.InitiateBooking(ctx, *act.Doctor, evt)
	default:
		return fmt.Errorf("unknown card action %q", act.Kind)
	}
}

// executeDelete runs confirm, then the delete collaborator. The card leaves
// the surface only on a reported success; on any failure the message is
// surfaced and the card stays.
func (e *Executor) executeDelete(ctx context.Context, act Action) {
	if !e.confirmer.Confirm(fmt.Sprintf("Delete doctor %d?", act.DoctorID)) {
		return
	}

	res, err := e.remover.DeleteDoctor(ctx, act.DoctorID, act.Token)
	if err != nil {
		e.log.Error().Err(err).Int64("doctor_id", act.DoctorID).Msg("doctor delete failed")
		e.notifier.Notify(res.Message)
		return
	}

	if res.Success {
		e.surface.RemoveCard(act.DoctorID)
	}
	e.notifier.Notify(res.Message)
}
