package directory

import (
	"strings"

	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
)

type ActionKind string

const (
	ActionNone        ActionKind = "none"
	ActionDelete      ActionKind = "delete"
	ActionPromptLogin ActionKind = "prompt_login"
	ActionBook        ActionKind = "book"
)

// Action describes what activating a card does. It is a value, not a side
// effect: the Executor performs it.
type Action struct {
	Kind     ActionKind
	DoctorID int64
	Token    string
	Doctor   *scheduling.Doctor
}

// Card is the renderable description of one doctor in the directory.
type Card struct {
	DoctorID       int64
	Name           string
	Specialization string
	Email          string
	Availability   string
	Action         Action
}

// BuildCard derives the card for one doctor under the given session snapshot.
// Pure: it never mutates the doctor and performs no I/O. The role match is
// exact, with no fallthrough: anything outside the three known roles gets no
// action element at all.
func BuildCard(d scheduling.Doctor, s session.Session) Card {
	card := Card{
		DoctorID:       d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Email:          d.Email,
		Availability:   strings.Join(d.Availability, ","),
		Action:         Action{Kind: ActionNone},
	}

	switch s.Role {
	case session.RoleAdmin:
		card.Action = Action{
			Kind:     ActionDelete,
			DoctorID: d.ID,
			Token:    s.Token,
		}
	case session.RolePatient:
		card.Action = Action{Kind: ActionPromptLogin}
	case session.RoleLoggedPatient:
		doctor := d
		card.Action = Action{
			Kind:   ActionBook,
			Doctor: &doctor,
			Token:  s.Token,
		}
	}

	return card
}
