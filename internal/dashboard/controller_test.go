package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartclinic/clinic-portal/internal/dashboard"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
)

type fetchCall struct {
	date  time.Time
	name  string
	token string
}

type stubSource struct {
	mu      sync.Mutex
	calls   []fetchCall
	respond func(call int, c fetchCall) ([]scheduling.AppointmentEntry, error)
}

func (s *stubSource) FetchAppointments(ctx context.Context, date time.Time, name, token string) ([]scheduling.AppointmentEntry, error) {
	s.mu.Lock()
	c := fetchCall{date: date, name: name, token: token}
	s.calls = append(s.calls, c)
	n := len(s.calls)
	s.mu.Unlock()
	return s.respond(n, c)
}

func (s *stubSource) callList() []fetchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fetchCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type renderRecorder struct {
	mu      sync.Mutex
	rows    []dashboard.AppointmentRow
	notice  string
	renders int
}

func (r *renderRecorder) RenderRows(rows []dashboard.AppointmentRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.notice = ""
	r.renders++
}

func (r *renderRecorder) RenderNotice(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.notice = msg
	r.renders++
}

func (r *renderRecorder) snapshot() ([]dashboard.AppointmentRow, string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows, r.notice, r.renders
}

func entry(patientID int64, name string) scheduling.AppointmentEntry {
	return scheduling.AppointmentEntry{
		ID:              patientID * 100,
		Patient:         scheduling.PatientRecord{ID: patientID, Name: name, Phone: "555-0100", Email: name + "@example.com"},
		AppointmentTime: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 15, 45, 0, 0, time.UTC)
}

func newController(src *stubSource, rec *renderRecorder, tokens session.TokenSource, display dashboard.DateDisplay) *dashboard.Controller {
	if tokens == nil {
		tokens = session.StaticTokens("tok")
	}
	return dashboard.NewController(dashboard.Config{
		Source:      src,
		Renderer:    rec,
		Tokens:      tokens,
		DateDisplay: display,
		Now:         fixedNow,
		Logger:      zerolog.Nop(),
	})
}

func TestController_InitialLoad(t *testing.T) {
	src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
		return nil, nil
	}}
	rec := &renderRecorder{}
	ctl := newController(src, rec, nil, nil)

	ctl.Start(context.Background())

	calls := src.callList()
	require.Len(t, calls, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), calls[0].date)
	assert.Equal(t, "", calls[0].name)
	assert.Equal(t, "tok", calls[0].token)
}

func TestController_NameFilterNormalization(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Jane", "Jane"},
		{"  Jane Doe  ", "Jane Doe"},
	}

	for _, tc := range cases {
		src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
			return nil, nil
		}}
		rec := &renderRecorder{}
		ctl := newController(src, rec, nil, nil)

		ctl.SetPatientNameFilter(context.Background(), tc.raw)

		assert.Equal(t, tc.want, ctl.PatientNameFilter(), "raw=%q", tc.raw)
		calls := src.callList()
		require.Len(t, calls, 1, "every filter edit triggers exactly one refresh")
		assert.Equal(t, tc.want, calls[0].name)
	}
}

func TestController_Outcomes(t *testing.T) {
	t.Run("empty result renders the no-appointments row", func(t *testing.T) {
		src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
			return []scheduling.AppointmentEntry{}, nil
		}}
		rec := &renderRecorder{}
		ctl := newController(src, rec, nil, nil)

		ctl.Refresh(context.Background())

		rows, notice, _ := rec.snapshot()
		assert.Nil(t, rows)
		assert.Equal(t, dashboard.NoAppointmentsMessage, notice)
		assert.Equal(t, dashboard.OutcomeEmpty, ctl.LastOutcome())
	})

	t.Run("fetch failure renders the failure row", func(t *testing.T) {
		src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
			return nil, errors.New("connection refused")
		}}
		rec := &renderRecorder{}
		ctl := newController(src, rec, nil, nil)

		ctl.Refresh(context.Background())

		rows, notice, _ := rec.snapshot()
		assert.Nil(t, rows)
		assert.Equal(t, dashboard.LoadFailedMessage, notice)
		assert.Equal(t, dashboard.OutcomeFailure, ctl.LastOutcome())
	})

	t.Run("rows rendered in response order", func(t *testing.T) {
		src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
			return []scheduling.AppointmentEntry{entry(3, "Jane"), entry(1, "Ann"), entry(2, "Bob")}, nil
		}}
		rec := &renderRecorder{}
		ctl := newController(src, rec, nil, nil)

		ctl.Refresh(context.Background())

		rows, notice, _ := rec.snapshot()
		assert.Empty(t, notice)
		require.Len(t, rows, 3)
		assert.Equal(t, []int64{3, 1, 2}, []int64{rows[0].PatientID, rows[1].PatientID, rows[2].PatientID})
		assert.Equal(t, "Jane", rows[0].PatientName)
		assert.Equal(t, "jane@example.com", rows[0].PatientEmail)
		assert.Equal(t, dashboard.OutcomeSuccess, ctl.LastOutcome())
	})
}

func TestController_ResetToToday(t *testing.T) {
	src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
		return nil, nil
	}}
	rec := &renderRecorder{}
	display := &dateRecorder{}
	ctl := newController(src, rec, nil, display)

	ctl.SetSelectedDate(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	before := len(src.callList())

	ctl.ResetToToday(context.Background())

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, ctl.SelectedDate())
	assert.Equal(t, today, display.shown)

	calls := src.callList()
	require.Len(t, calls, before+1, "reset triggers exactly one refresh")
	assert.Equal(t, today, calls[len(calls)-1].date)
	assert.Equal(t, "", calls[len(calls)-1].name)
}

type dateRecorder struct {
	shown time.Time
}

func (d *dateRecorder) ShowDate(v time.Time) { d.shown = v }

func TestController_StaleResponseDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	dateA := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dateB := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	src := &stubSource{respond: func(call int, c fetchCall) ([]scheduling.AppointmentEntry, error) {
		if call == 1 {
			close(firstStarted)
			<-release
			return []scheduling.AppointmentEntry{entry(1, "Stale")}, nil
		}
		return []scheduling.AppointmentEntry{entry(2, "Fresh")}, nil
	}}
	rec := &renderRecorder{}
	ctl := newController(src, rec, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctl.SetSelectedDate(context.Background(), dateA)
	}()

	<-firstStarted
	ctl.SetSelectedDate(context.Background(), dateB)

	// Let the slow first response arrive after the fast second one rendered.
	close(release)
	<-done

	rows, _, renders := rec.snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, "Fresh", rows[0].PatientName, "an earlier slow response must not overwrite a later fast one")
	assert.Equal(t, 1, renders, "the stale response must be discarded unrendered")
	assert.Equal(t, dashboard.OutcomeSuccess, ctl.LastOutcome())
}

func TestController_TokenReReadPerRefresh(t *testing.T) {
	src := &stubSource{respond: func(int, fetchCall) ([]scheduling.AppointmentEntry, error) {
		return nil, nil
	}}
	rec := &renderRecorder{}

	token := "tok-before"
	tokens := session.TokenFunc(func(context.Context) (string, bool) {
		return token, token != ""
	})
	ctl := newController(src, rec, tokens, nil)

	ctl.Refresh(context.Background())
	token = "tok-after"
	ctl.Refresh(context.Background())

	calls := src.callList()
	require.Len(t, calls, 2)
	assert.Equal(t, "tok-before", calls[0].token)
	assert.Equal(t, "tok-after", calls[1].token)
}
