package session

import (
	"context"
	"sync"

	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/models"
)

// State is what the presenter sees for one session. Rows and Insight are nil
// until ready. Insight is only ever set from a fully decoded result.
type State struct {
	Generation uint64                     `json:"generation"`
	FileName   string                     `json:"file_name,omitempty"`
	Header     []string                   `json:"header,omitempty"`
	Rows       []models.RawEventRow       `json:"rows"`
	Insight    *models.ReservationInsight `json:"insight"`
	Status     models.Status              `json:"status"`
	Error      *ErrorState                `json:"error"`
}

type ErrorState struct {
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
}

// Busy reports whether an upload is still reading or waiting on the model.
func (s State) Busy() bool {
	return s.Status == models.StatusReading || s.Status == models.StatusSending
}

// Session holds at most one upload. Every Begin starts a new generation and
// cancels the previous one; results carrying an older generation are dropped.
type Session struct {
	ID string

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
}

func New(id string) *Session {
	return &Session{ID: id, state: State{Status: models.StatusIdle}}
}

// Begin resets the session for a new file and returns the ticket the
// pipeline must use for every write, plus a context cancelled when the
// upload is superseded.
func (s *Session) Begin(parent context.Context, fileName string) (*Ticket, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	s.gen++
	s.cancel = cancel
	s.state = State{
		Generation: s.gen,
		FileName:   fileName,
		Status:     models.StatusReading,
	}
	return &Ticket{s: s, gen: s.gen}, ctx
}

// Reject records an error raised before any pipeline started, such as no
// file being selected. The previous upload is abandoned.
func (s *Session) Reject(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	s.gen++
	s.state = State{Generation: s.gen, Status: models.StatusIdle, Error: errorState(err)}
}

// Close cancels any in-flight upload.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	s.gen++
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Header != nil {
		st.Header = append([]string(nil), st.Header...)
	}
	if st.Rows != nil {
		st.Rows = append([]models.RawEventRow(nil), st.Rows...)
	}
	if st.Insight != nil {
		insight := *st.Insight
		st.Insight = &insight
	}
	if st.Error != nil {
		e := *st.Error
		st.Error = &e
	}
	return st
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Ticket is the pipeline's handle on one generation of a session.
type Ticket struct {
	s   *Session
	gen uint64
}

func (t *Ticket) Generation() uint64 {
	return t.gen
}

func (t *Ticket) SessionID() string {
	return t.s.ID
}

// Current reports whether the ticket's upload is still the session's latest.
func (t *Ticket) Current() bool {
	return t.s.Generation() == t.gen
}

// apply runs fn under the session lock if the ticket is still current.
func (t *Ticket) apply(fn func(st *State)) bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.gen != t.gen {
		return false
	}
	fn(&t.s.state)
	return true
}

// PublishRows makes the parsed rows visible without waiting for the model.
// Rows are never mutated after publishing.
func (t *Ticket) PublishRows(header []string, rows []models.RawEventRow) bool {
	if rows == nil {
		rows = []models.RawEventRow{}
	}
	return t.apply(func(st *State) {
		st.Header = header
		st.Rows = rows
	})
}

func (t *Ticket) Sending() bool {
	return t.apply(func(st *State) {
		if st.Status == models.StatusReading {
			st.Status = models.StatusSending
		}
	})
}

func (t *Ticket) Complete(insight models.ReservationInsight) bool {
	return t.apply(func(st *State) {
		st.Insight = &insight
		st.Status = models.StatusDone
		st.Error = nil
		t.s.release()
	})
}

// Fail records err and clears the status indicator. Rows already published
// stay visible; no insight is exposed.
func (t *Ticket) Fail(err error) bool {
	return t.apply(func(st *State) {
		st.Insight = nil
		st.Status = models.StatusIdle
		st.Error = errorState(err)
		t.s.release()
	})
}

// release cancels the finished upload's context. Callers hold s.mu.
func (s *Session) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func errorState(err error) *ErrorState {
	if err == nil {
		return nil
	}
	return &ErrorState{Kind: errs.KindOf(err), Message: err.Error()}
}
