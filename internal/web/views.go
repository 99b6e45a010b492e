package web

import (
	"html/template"
	"time"

	"github.com/smartclinic/clinic-portal/internal/booking"
	"github.com/smartclinic/clinic-portal/internal/dashboard"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
)

// The web layer is the render target the core components draw on. Each
// request gets fresh collector values implementing the core's renderer
// interfaces; the templates below turn them into HTML.

// flashNotifier collects user-visible messages for the next rendered page.
type flashNotifier struct {
	messages []string
}

func (n *flashNotifier) Notify(msg string) {
	n.messages = append(n.messages, msg)
}

// formConfirmer carries the browser-side confirm() result. The destructive
// form posts a confirmed flag; absence means the user backed out.
type formConfirmer struct {
	confirmed bool
}

func (c formConfirmer) Confirm(string) bool {
	return c.confirmed
}

// removalSurface records which cards left the directory. The next page load
// re-fetches, so recording is all the web surface needs to do.
type removalSurface struct {
	removed []int64
}

func (s *removalSurface) RemoveCard(doctorID int64) {
	s.removed = append(s.removed, doctorID)
}

// overlayCapture implements booking.Overlay by capturing the handoff payload
// for the overlay template.
type overlayCapture struct {
	shown   bool
	event   booking.UIEvent
	doctor  scheduling.Doctor
	patient scheduling.PatientRecord
}

func (o *overlayCapture) ShowBookingOverlay(evt booking.UIEvent, d scheduling.Doctor, p scheduling.PatientRecord) {
	o.shown = true
	o.event = evt
	o.doctor = d
	o.patient = p
}

// tableCollector implements dashboard.TableRenderer. Rows and notice are
// mutually exclusive: each render call replaces the whole table.
type tableCollector struct {
	rows   []dashboard.AppointmentRow
	notice string
}

func (t *tableCollector) RenderRows(rows []dashboard.AppointmentRow) {
	t.rows = rows
	t.notice = ""
}

func (t *tableCollector) RenderNotice(msg string) {
	t.rows = nil
	t.notice = msg
}

// datePickerState implements dashboard.DateDisplay for the bound picker.
type datePickerState struct {
	value time.Time
}

func (d *datePickerState) ShowDate(v time.Time) {
	d.value = v
}

var pageTemplates = template.Must(template.New("portal").Parse(`
{{define "directory"}}<!DOCTYPE html>
<html>
<head><title>Doctor Directory</title></head>
<body>
<h1>Doctor Directory</h1>
{{range .Messages}}<p class="notice">{{.}}</p>{{end}}
<div class="doctor-cards">
{{range .Cards}}
  <div class="doctor-card" id="doctor-{{.DoctorID}}">
    <div class="doctor-info">
      <h3>{{.Name}}</h3>
      <h4>{{.Specialization}}</h4>
      <h4>{{.Email}}</h4>
      <h4>{{.Availability}}</h4>
    </div>
    <div class="card-actions">
      {{if eq .Action.Kind "delete"}}
      <form method="post" action="/doctors/{{.DoctorID}}/delete" onsubmit="return confirm('Delete this doctor?') && (this.confirmed.value='true')">
        <input type="hidden" name="confirmed" value="">
        <button type="submit">Delete</button>
      </form>
      {{else if eq .Action.Kind "prompt_login"}}
      <form method="post" action="/book/{{.DoctorID}}"><button type="submit">Book Now</button></form>
      {{else if eq .Action.Kind "book"}}
      <form method="post" action="/book/{{.DoctorID}}"><button type="submit">Book Now</button></form>
      {{end}}
    </div>
  </div>
{{end}}
</div>
</body>
</html>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html>
<head><title>Appointments</title></head>
<body>
<h1>Appointments</h1>
<form method="get" action="/dashboard">
  <input type="text" id="searchBar" name="name" placeholder="Search by patient name" value="{{.PatientName}}">
  <input type="date" id="datePicker" name="date" value="{{.SelectedDate}}">
  <button type="submit">Apply</button>
  <button type="submit" id="todayBtn" name="today" value="1">Today</button>
</form>
<table>
  <thead>
    <tr><th>Patient ID</th><th>Name</th><th>Phone</th><th>Email</th><th>Time</th></tr>
  </thead>
  <tbody id="patientTableBody">
  {{if .Notice}}
    <tr><td colspan="5">{{.Notice}}</td></tr>
  {{else}}
    {{range .Rows}}
    <tr>
      <td>{{.PatientID}}</td>
      <td>{{.PatientName}}</td>
      <td>{{.PatientPhone}}</td>
      <td>{{.PatientEmail}}</td>
      <td>{{.Meta}}</td>
    </tr>
    {{end}}
  {{end}}
  </tbody>
</table>
</body>
</html>{{end}}

{{define "overlay"}}<!DOCTYPE html>
<html>
<head><title>Book Appointment</title></head>
<body>
<div class="booking-overlay" data-target="{{.Event.Target}}">
  <h2>Book with {{.Doctor.Name}}</h2>
  <p>{{.Doctor.Specialization}}</p>
  <p>Patient: {{.Patient.Name}} ({{.Patient.Email}})</p>
  <ul>
  {{range .Doctor.Availability}}<li>{{.}}</li>{{end}}
  </ul>
</div>
</body>
</html>{{end}}
`))
