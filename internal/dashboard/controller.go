package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
)

const (
	// NoAppointmentsMessage is the informational row shown for an empty result.
	NoAppointmentsMessage = "No appointments found for the selected date."
	// LoadFailedMessage is the informational row shown when the fetch fails.
	LoadFailedMessage = "Error loading appointments. Try again later."
)

type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeFailure Outcome = "failure"
)

// AppointmentRow is the view projection of one fetched appointment. Rebuilt
// from scratch on every successful refresh.
type AppointmentRow struct {
	PatientID    int64
	PatientName  string
	PatientPhone string
	PatientEmail string
	Meta         string
}

// AppointmentSource is the appointment-fetch collaborator. An empty
// patientName means no name constraint.
type AppointmentSource interface {
	FetchAppointments(ctx context.Context, date time.Time, patientName, token string) ([]scheduling.AppointmentEntry, error)
}

// TableRenderer is the render target for the dashboard table. Both calls
// replace the whole table: clear, then repopulate. There is no incremental
// diffing, so rapid filter changes can never leave duplicate or orphaned rows.
type TableRenderer interface {
	RenderRows(rows []AppointmentRow)
	RenderNotice(msg string)
}

// DateDisplay is an optionally bound date-picker control kept in sync by
// ResetToToday.
type DateDisplay interface {
	ShowDate(d time.Time)
}

// Config wires a Controller. Now defaults to time.Now; DateDisplay may be nil.
type Config struct {
	Source      AppointmentSource
	Renderer    TableRenderer
	Tokens      session.TokenSource
	DateDisplay DateDisplay
	Now         func() time.Time
	Logger      zerolog.Logger

	// InitialDate and InitialName seed the filter for deep-linked views.
	// Zero values mean "today" and "no name filter".
	InitialDate time.Time
	InitialName string
}

// Controller owns the dashboard's two filter dimensions and keeps the
// rendered table in step with them. Every filter mutation invalidates the
// previous fetch and triggers a new one; a generation counter guarantees
// that only the most recently initiated refresh ever renders.
type Controller struct {
	source   AppointmentSource
	renderer TableRenderer
	tokens   session.TokenSource
	display  DateDisplay
	now      func() time.Time
	log      zerolog.Logger

	mu           sync.Mutex
	selectedDate time.Time
	patientName  string
	gen          uint64
	lastOutcome  Outcome
}

func NewController(cfg Config) *Controller {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		source:   cfg.Source,
		renderer: cfg.Renderer,
		tokens:   cfg.Tokens,
		display:  cfg.DateDisplay,
		now:      now,
		log:      cfg.Logger.With().Str("component", "dashboard").Logger(),
	}

	c.selectedDate = dateOnly(now())
	if !cfg.InitialDate.IsZero() {
		c.selectedDate = dateOnly(cfg.InitialDate)
	}
	c.patientName = strings.TrimSpace(cfg.InitialName)

	return c
}

// Start performs the initial load for a newly active view.
func (c *Controller) Start(ctx context.Context) {
	c.Refresh(ctx)
}

// SetPatientNameFilter trims the raw input; an empty result clears the name
// filter entirely. Always triggers a refresh.
func (c *Controller) SetPatientNameFilter(ctx context.Context, raw string) {
	c.mu.Lock()
	c.patientName = strings.TrimSpace(raw)
	c.mu.Unlock()

	c.Refresh(ctx)
}

// SetSelectedDate replaces the date dimension and triggers a refresh.
func (c *Controller) SetSelectedDate(ctx context.Context, d time.Time) {
	c.mu.Lock()
	c.selectedDate = dateOnly(d)
	c.mu.Unlock()

	c.Refresh(ctx)
}

// ResetToToday jumps the date to the current calendar day, syncs the bound
// date control, and triggers exactly one refresh.
func (c *Controller) ResetToToday(ctx context.Context) {
	today := dateOnly(c.now())

	c.mu.Lock()
	c.selectedDate = today
	c.mu.Unlock()

	if c.display != nil {
		c.display.ShowDate(today)
	}

	c.Refresh(ctx)
}

// Refresh fetches with the current filter state and replaces the table with
// the outcome. The token is re-read from ambient state per call. If a newer
// refresh was initiated while this one was in flight, its response is
// discarded unrendered.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	date := c.selectedDate
	name := c.patientName
	c.mu.Unlock()

	token, _ := c.tokens.CurrentToken(ctx)

	entries, err := c.source.FetchAppointments(ctx, date, name, token)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// A later refresh owns the table now.
		return
	}

	if err != nil {
		c.lastOutcome = OutcomeFailure
		c.log.Error().Err(err).Time("date", date).Str("patient_name", name).Msg("appointment fetch failed")
		c.renderer.RenderNotice(LoadFailedMessage)
		return
	}

	if len(entries) == 0 {
		c.lastOutcome = OutcomeEmpty
		c.renderer.RenderNotice(NoAppointmentsMessage)
		return
	}

	rows := make([]AppointmentRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, rowFromEntry(entry))
	}

	c.lastOutcome = OutcomeSuccess
	c.renderer.RenderRows(rows)
}

// SelectedDate returns the active date dimension.
func (c *Controller) SelectedDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedDate
}

// PatientNameFilter returns the active name filter, empty when cleared.
func (c *Controller) PatientNameFilter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patientName
}

// LastOutcome reports the state the table currently renders.
func (c *Controller) LastOutcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome
}

func rowFromEntry(entry scheduling.AppointmentEntry) AppointmentRow {
	return AppointmentRow{
		PatientID:    entry.Patient.ID,
		PatientName:  entry.Patient.Name,
		PatientPhone: entry.Patient.Phone,
		PatientEmail: entry.Patient.Email,
		Meta:         entry.AppointmentTime.Format("15:04"),
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
