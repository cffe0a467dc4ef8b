// ABOUTME: In-memory stand-in for the remote feedback store
// ABOUTME: Serves the same REST routes with chi and recomputes roster aggregates on every read

package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amanks009/feedback-client/models"
)

// Well-known tokens installed by Seed.
const (
	ManagerToken  = "manager-token"
	EmployeeToken = "employee-1-token"
	Password      = "password"
)

type account struct {
	user     models.User
	password string
	token    string
}

type failure struct {
	status  int
	message string
}

// Server is a thread-safe fake of the feedback API.
type Server struct {
	mu        sync.Mutex
	employees []models.Employee
	items     []models.FeedbackItem
	nextID    int64
	accounts  []account
	failures  map[string][]failure
	requests  []string
	now       func() time.Time
	router    chi.Router
}

// New returns an empty server. Use Seed for a ready-made team.
func New() *Server {
	s := &Server{
		nextID:   1,
		failures: make(map[string][]failure),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(models.RoleManager))
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/feedback/{employeeID}", s.handleListFeedback)
		r.Post("/feedback", s.handleCreateFeedback)
		r.Put("/feedback/{id}", s.handleUpdateFeedback)
		r.Delete("/feedback/{id}", s.handleDeleteFeedback)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(models.RoleEmployee))
		r.Get("/employee-dashboard", s.handleTimeline)
		r.Post("/acknowledge/{id}", s.handleAcknowledge)
	})

	s.router = r
	return s
}

// Seed returns a server with one manager and two reports. Employee 1 can
// sign in with EmployeeToken; the manager with ManagerToken.
func Seed() *Server {
	s := New()
	s.AddEmployee(models.Employee{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"})
	s.AddEmployee(models.Employee{ID: 2, Name: "Grace Hopper", Email: "grace@example.com"})
	s.AddAccount(models.User{ID: 100, Name: "Mona Manager", Email: "mona@example.com", Role: models.RoleManager}, Password, ManagerToken)
	s.AddAccount(models.User{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleEmployee}, Password, EmployeeToken)
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on an httptest server closed at test cleanup and returns its URL.
func (s *Server) Start(tb testing.TB) string {
	tb.Helper()
	ts := httptest.NewServer(s.router)
	tb.Cleanup(ts.Close)
	return ts.URL
}

// SetClock fixes the timestamp used for new feedback.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) AddEmployee(e models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, e)
}

// AddAccount registers credentials. Employees sign in with user.ID equal to
// their Employee.ID.
func (s *Server) AddAccount(u models.User, password, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, account{user: u, password: password, token: token})
}

// AddFeedback stores an item as-is, assigning an ID and timestamp when unset.
func (s *Server) AddFeedback(item models.FeedbackItem) models.FeedbackItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.nextID
	}
	if item.ID >= s.nextID {
		s.nextID = item.ID + 1
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}
	s.items = append(s.items, item)
	return item
}

// Feedback returns a copy of the stored item.
func (s *Server) Feedback(id int64) (models.FeedbackItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.FeedbackItem{}, false
}

// FailNext makes the next request matching method and path fail with status.
// Calls queue up, one failure per matching request.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// Requests returns every "METHOD /path" served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts requests matching method and path exactly.
func (s *Server) CountRequests(method, path string) int {
	key := method + " " + path
	n := 0
	for _, r := range s.Requests() {
		if r == key {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) requireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

			s.mu.Lock()
			var found *account
			for i := range s.accounts {
				if token != "" && s.accounts[i].token == token {
					found = &s.accounts[i]
					break
				}
			}
			s.mu.Unlock()

			if found == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !strings.EqualFold(string(found.user.Role), string(role)) {
				writeError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r, found.user)))
		})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, body.Email) && a.password == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{"token": a.token, "user": a.user})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := make([]models.RosterEntry, 0, len(s.employees))
	for _, e := range s.employees {
		entry := models.RosterEntry{Employee: e}
		for _, it := range s.items {
			if it.EmployeeID == e.ID {
				entry.FeedbackCount++
				entry.Sentiments.Add(it.Sentiment, 1)
			}
		}
		team = append(team, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasEmployee(employeeID) {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}

	items := []models.FeedbackItem{}
	for _, it := range s.items {
		if it.EmployeeID == employeeID {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	if !s.hasEmployee(p.EmployeeID) {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}
	item := models.FeedbackItem{
		ID:             s.nextID,
		EmployeeID:     p.EmployeeID,
		Strengths:      p.Strengths,
		AreasToImprove: p.AreasToImprove,
		Sentiment:      p.Sentiment,
		CreatedAt:      s.now().UTC(),
	}
	s.nextID++
	s.items = append(s.items, item)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Strengths = p.Strengths
			s.items[i].AreasToImprove = p.AreasToImprove
			s.items[i].Sentiment = p.Sentiment
			writeJSON(w, http.StatusOK, s.items[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Feedback not found")
}

func (s *Server) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Feedback not found")
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	timeline := []models.FeedbackItem{}
	for _, it := range s.items {
		if it.EmployeeID == user.ID {
			timeline = append(timeline, it)
		}
	}
	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].CreatedAt.After(timeline[j].CreatedAt) })
	writeJSON(w, http.StatusOK, map[string]any{"timeline": timeline})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := userFromContext(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			if s.items[i].EmployeeID != user.ID {
				writeError(w, http.StatusForbidden, "Not your feedback")
				return
			}
			s.items[i].Acknowledged = true
			writeJSON(w, http.StatusOK, map[string]any{"message": "Feedback acknowledged"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Feedback not found")
}

// hasEmployee must be called with s.mu held.
func (s *Server) hasEmployee(id int64) bool {
	for _, e := range s.employees {
		if e.ID == id {
			return true
		}
	}
	return false
}

func decodePayload(w http.ResponseWriter, r *http.Request) (models.FeedbackPayload, bool) {
	var p models.FeedbackPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return p, false
	}
	p.Strengths = strings.TrimSpace(p.Strengths)
	p.AreasToImprove = strings.TrimSpace(p.AreasToImprove)
	if p.Strengths == "" || p.AreasToImprove == "" || !p.Sentiment.Valid() {
		writeError(w, http.StatusBadRequest, "Strengths, areas to improve and sentiment are required")
		return p, false
	}
	return p, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", param))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
