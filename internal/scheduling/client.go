package scheduling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrUnauthorized = errors.New("scheduling api rejected the token")
	ErrUpstream     = errors.New("scheduling api request failed")
)

// noNameFilter is what the scheduling API expects in the patient-name path
// segment when no name filter is active.
const noNameFilter = "null"

// Client is a typed consumer of the remote scheduling API. The portal owns
// no data of its own; every read and write goes through here.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchDoctors returns the full doctor directory.
func (c *Client) FetchDoctors(ctx context.Context) ([]Doctor, error) {
	var body struct {
		Doctors []Doctor `json:"doctors"`
	}
	if err := c.getJSON(ctx, "/doctor", &body); err != nil {
		return nil, fmt.Errorf("fetch doctors: %w", err)
	}
	return body.Doctors, nil
}

// FilterDoctors narrows the directory by name, time slot and specialty. Empty
// criteria are sent as the wildcard segment the API expects.
func (c *Client) FilterDoctors(ctx context.Context, name, slot, specialty string) ([]Doctor, error) {
	path := fmt.Sprintf("/doctor/filter/%s/%s/%s",
		pathSegment(name), pathSegment(slot), pathSegment(specialty))

	var body struct {
		Doctors []Doctor `json:"doctors"`
	}
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("filter doctors: %w", err)
	}
	return body.Doctors, nil
}

// SaveDoctor creates a new doctor. Admin only; the API enforces that via the
// token, which is passed through unmodified.
func (c *Client) SaveDoctor(ctx context.Context, d Doctor, token string) (SaveResult, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return SaveResult{}, fmt.Errorf("encode doctor: %w", err)
	}

	path := "/doctor/" + url.PathEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return SaveResult{}, fmt.Errorf("save doctor: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		Doctor *Doctor `json:"doctor"`
	}
	if err := c.do(req, &body); err != nil {
		return SaveResult{Success: false, Message: "Doctor creation failed!"}, err
	}
	return SaveResult{Success: true, Message: "Doctor successfully created!", Doctor: body.Doctor}, nil
}

// DeleteDoctor removes a doctor by id. The returned DeleteResult is always
// populated: transport failures yield the canonical failure message alongside
// the error so callers can surface something user-readable.
func (c *Client) DeleteDoctor(ctx context.Context, id int64, token string) (DeleteResult, error) {
	path := fmt.Sprintf("/doctor/%d/%s", id, url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return DeleteResult{Success: false, Message: "Doctor deletion failed!"}, fmt.Errorf("delete doctor: %w", err)
	}

	if err := c.do(req, nil); err != nil {
		return DeleteResult{Success: false, Message: "Doctor deletion failed!"}, err
	}
	return DeleteResult{Success: true, Message: "Doctor successfully deleted!"}, nil
}

// FetchPatientRecord resolves the patient behind a token.
func (c *Client) FetchPatientRecord(ctx context.Context, token string) (*PatientRecord, error) {
	var body struct {
		Patient *PatientRecord `json:"patient"`
	}
	if err := c.getJSON(ctx, "/patient/"+url.PathEscape(token), &body); err != nil {
		return nil, fmt.Errorf("fetch patient record: %w", err)
	}
	if body.Patient == nil {
		return nil, fmt.Errorf("fetch patient record: %w: empty response", ErrUpstream)
	}
	return body.Patient, nil
}

// FetchAppointments lists appointments for a calendar date, optionally
// narrowed by patient name. An empty patientName means no name constraint.
func (c *Client) FetchAppointments(ctx context.Context, date time.Time, patientName, token string) ([]AppointmentEntry, error) {
	name := noNameFilter
	if patientName != "" {
		name = url.PathEscape(patientName)
	}
	path := fmt.Sprintf("/appointments/%s/%s/%s",
		date.Format("2006-01-02"), name, url.PathEscape(token))

	var body struct {
		Appointments []AppointmentEntry `json:"appointments"`
	}
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	return body.Appointments, nil
}

// Ping checks that the scheduling API is reachable. Used by readiness.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/doctor", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping scheduling api: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping scheduling api: %w: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}

func pathSegment(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return noNameFilter
	}
	return url.PathEscape(v)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
