package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smartclinic/clinic-portal/internal/booking"
	"github.com/smartclinic/clinic-portal/internal/dashboard"
	"github.com/smartclinic/clinic-portal/internal/directory"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
	"github.com/smartclinic/clinic-portal/internal/session"
)

const sessionCookieName = "portal_session"

// SchedulingAPI is everything the handlers need from the remote scheduling
// API client.
type SchedulingAPI interface {
	FetchDoctors(ctx context.Context) ([]scheduling.Doctor, error)
	FilterDoctors(ctx context.Context, name, slot, specialty string) ([]scheduling.Doctor, error)
	SaveDoctor(ctx context.Context, d scheduling.Doctor, token string) (scheduling.SaveResult, error)
	DeleteDoctor(ctx context.Context, id int64, token string) (scheduling.DeleteResult, error)
	FetchPatientRecord(ctx context.Context, token string) (*scheduling.PatientRecord, error)
	FetchAppointments(ctx context.Context, date time.Time, patientName, token string) ([]scheduling.AppointmentEntry, error)
}

type Handlers struct {
	api      SchedulingAPI
	sessions session.Store
	log      zerolog.Logger
}

func NewHandlers(api SchedulingAPI, sessions session.Store, log zerolog.Logger) *Handlers {
	return &Handlers{
		api:      api,
		sessions: sessions,
		log:      log.With().Str("component", "web").Logger(),
	}
}

// currentSession resolves the ambient session for a request. No cookie or a
// store miss both mean the anonymous session.
func (h *Handlers) currentSession(r *http.Request) (session.Session, string) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return session.Anonymous(), ""
	}

	sess, err := h.sessions.Current(r.Context(), cookie.Value)
	if err != nil {
		h.log.Error().Err(err).Msg("session read failed, treating as anonymous")
		return session.Anonymous(), cookie.Value
	}
	return sess, cookie.Value
}

// tokenSource re-reads the token from the ambient store on every call, so a
// logout between render and activation is observed at the point of use.
func (h *Handlers) tokenSource(sessionID string) session.TokenSource {
	return session.TokenFunc(func(ctx context.Context) (string, bool) {
		sess, err := h.sessions.Current(ctx, sessionID)
		if err != nil {
			h.log.Error().Err(err).Msg("session read failed during token check")
			return "", false
		}
		return sess.Token, sess.HasToken()
	})
}

type directoryPage struct {
	Cards    []directory.Card
	Messages []string
}

// Directory renders the role-gated doctor directory, optionally narrowed by
// the name/time/specialty filter.
func (h *Handlers) Directory(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)

	q := r.URL.Query()
	name, slot, specialty := q.Get("name"), q.Get("time"), q.Get("specialty")

	var (
		doctors []scheduling.Doctor
		err     error
	)
	if name != "" || slot != "" || specialty != "" {
		doctors, err = h.api.FilterDoctors(r.Context(), name, slot, specialty)
	} else {
		doctors, err = h.api.FetchDoctors(r.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("doctor fetch failed")
		http.Error(w, "directory unavailable, try again later", http.StatusBadGateway)
		return
	}

	page := directoryPage{
		Cards:    make([]directory.Card, 0, len(doctors)),
		Messages: q["msg"],
	}
	for _, d := range doctors {
		page.Cards = append(page.Cards, directory.BuildCard(d, sess))
	}

	renderPage(w, "directory", page)
}

// DeleteDoctor activates a card's delete action.
func (h *Handlers) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	act := directory.BuildCard(scheduling.Doctor{ID: id}, sess).Action
	if act.Kind != directory.ActionDelete {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	notifier := &flashNotifier{}
	surface := &removalSurface{}
	confirmer := formConfirmer{confirmed: r.FormValue("confirmed") == "true"}

	exec := directory.NewExecutor(confirmer, notifier, surface, h.api, nil, h.log)
	if err := exec.Execute(r.Context(), act, booking.UIEvent{}); err != nil {
		h.log.Error().Err(err).Int64("doctor_id", id).Msg("delete action failed")
	}

	redirectWithMessages(w, r, "/", notifier.messages)
}

// SaveDoctor creates a new doctor. Admin only.
func (h *Handlers) SaveDoctor(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	if sess.Role != session.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	doctor := scheduling.Doctor{
		Name:           r.PostFormValue("name"),
		Specialization: r.PostFormValue("specialization"),
		Email:          r.PostFormValue("email"),
		Availability:   r.PostForm["availability"],
	}

	res, err := h.api.SaveDoctor(r.Context(), doctor, sess.Token)
	if err != nil {
		h.log.Error().Err(err).Msg("doctor save failed")
	}

	redirectWithMessages(w, r, "/", []string{res.Message})
}

type dashboardPage struct {
	SelectedDate string
	PatientName  string
	Rows         []dashboard.AppointmentRow
	Notice       string
}

// Dashboard renders the appointment table for a date and optional patient
// name. The query string is the filter state of the view.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	_, sid := h.currentSession(r)
	q := r.URL.Query()

	var initialDate time.Time
	if raw := q.Get("date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			initialDate = d
		}
	}

	collector := &tableCollector{}
	picker := &datePickerState{}

	ctl := dashboard.NewController(dashboard.Config{
		Source:      h.api,
		Renderer:    collector,
		Tokens:      h.tokenSource(sid),
		DateDisplay: picker,
		Logger:      h.log,
		InitialDate: initialDate,
		InitialName: q.Get("name"),
	})

	if q.Get("today") != "" {
		ctl.ResetToToday(r.Context())
	} else {
		ctl.Start(r.Context())
	}

	renderPage(w, "dashboard", dashboardPage{
		SelectedDate: ctl.SelectedDate().Format("2006-01-02"),
		PatientName:  ctl.PatientNameFilter(),
		Rows:         collector.rows,
		Notice:       collector.notice,
	})
}

type overlayPage struct {
	Event   booking.UIEvent
	Doctor  scheduling.Doctor
	Patient scheduling.PatientRecord
}

// Book activates a card's booking action and, when the handoff succeeds,
// renders the booking overlay.
func (h *Handlers) Book(w http.ResponseWriter, r *http.Request) {
	sess, sid := h.currentSession(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	doctor, ok, err := h.findDoctor(r.Context(), id)
	if err != nil {
		http.Error(w, "directory unavailable, try again later", http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "doctor not found", http.StatusNotFound)
		return
	}

	act := directory.BuildCard(doctor, sess).Action

	notifier := &flashNotifier{}
	overlay := &overlayCapture{}
	orchestrator := booking.NewOrchestrator(h.tokenSource(sid), h.api, overlay, h.log)

	exec := directory.NewExecutor(formConfirmer{}, notifier, &removalSurface{}, h.api, orchestrator, h.log)
	err = exec.Execute(r.Context(), act, booking.UIEvent{Target: r.FormValue("target")})
	switch {
	case errors.Is(err, booking.ErrLoginRequired):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		redirectWithMessages(w, r, "/", []string{"Booking is unavailable right now. Try again later."})
		return
	}

	if overlay.shown {
		renderPage(w, "overlay", overlayPage{
			Event:   overlay.event,
			Doctor:  overlay.doctor,
			Patient: overlay.patient,
		})
		return
	}

	redirectWithMessages(w, r, "/", notifier.messages)
}

func (h *Handlers) findDoctor(ctx context.Context, id int64) (scheduling.Doctor, bool, error) {
	doctors, err := h.api.FetchDoctors(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("doctor fetch failed")
		return scheduling.Doctor{}, false, err
	}
	for _, d := range doctors {
		if d.ID == id {
			return d, true, nil
		}
	}
	return scheduling.Doctor{}, false, nil
}

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func redirectWithMessages(w http.ResponseWriter, r *http.Request, path string, messages []string) {
	v := url.Values{}
	for _, m := range messages {
		if m != "" {
			v.Add("msg", m)
		}
	}
	if encoded := v.Encode(); encoded != "" {
		path += "?" + encoded
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
