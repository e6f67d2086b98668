package digtrack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/digtrack/digtrack-go/internal/expiry"
	"github.com/digtrack/digtrack-go/internal/session"
	"github.com/digtrack/digtrack-go/internal/types"
)

// fakeBackend is an in-memory stand-in for the ticket service: magic-link
// auth with single-use tokens, ticket CRUD with server-side status
// filtering, and aggregate stats. Request counters let tests assert which
// reads hit the network.
type fakeBackend struct {
	srv *httptest.Server

	mu        sync.Mutex
	now       time.Time
	threshold int

	tickets map[string]*types.Ticket
	nextID  int

	emails map[string]bool
	tokens map[string]types.Identity // unconsumed magic-link tokens
	used   map[string]bool
	creds  map[string]types.Identity

	users    map[string]*types.User
	nextUser int

	calls    map[string]int
	failNext map[string]int // endpoint -> remaining forced 500s
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		now:       time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		threshold: expiry.DefaultThreshold,
		tickets:   make(map[string]*types.Ticket),
		emails:    map[string]bool{"pm@example.com": true},
		tokens:    make(map[string]types.Identity),
		used:      make(map[string]bool),
		creds:     make(map[string]types.Identity),
		users:     make(map[string]*types.User),
		calls:     make(map[string]int),
		failNext:  make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/request-magic-link", fb.handleRequestLink).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-magic-link", fb.handleVerify).Methods(http.MethodGet)
	r.HandleFunc("/auth/me", fb.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/tickets/stats", fb.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/tickets", fb.handleList).Methods(http.MethodGet)
	r.HandleFunc("/tickets", fb.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/tickets/{id}/renew", fb.handleRenew).Methods(http.MethodPost)
	r.HandleFunc("/tickets/{id}", fb.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/tickets/{id}", fb.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/tickets/{id}", fb.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/users", fb.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users", fb.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", fb.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", fb.handleDeleteUser).Methods(http.MethodDelete)

	fb.srv = httptest.NewServer(r)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) clock() time.Time {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.now
}

func (fb *fakeBackend) callCount(endpoint string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[endpoint]
}

func (fb *fakeBackend) failNextCalls(endpoint string, n int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failNext[endpoint] = n
}

// addToken registers an unconsumed magic-link token for identity.
func (fb *fakeBackend) addToken(token string, id types.Identity) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens[token] = id
}

// seedTicket installs a ticket directly, bypassing auth.
func (fb *fakeBackend) seedTicket(tk types.Ticket) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	if tk.ID == "" {
		tk.ID = fmt.Sprintf("%d", fb.nextID)
	}
	fb.tickets[tk.ID] = &tk
}

// track records the call and reports whether a forced failure was consumed.
func (fb *fakeBackend) track(w http.ResponseWriter, endpoint string) bool {
	fb.mu.Lock()
	fb.calls[endpoint]++
	fail := fb.failNext[endpoint] > 0
	if fail {
		fb.failNext[endpoint]--
	}
	fb.mu.Unlock()
	if fail {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
	return fail
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) identityFor(r *http.Request) (types.Identity, bool) {
	auth := r.Header.Get("Authorization")
	cred := strings.TrimPrefix(auth, "Bearer ")
	if cred == "" || cred == auth {
		return types.Identity{}, false
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id, ok := fb.creds[cred]
	return id, ok
}

func (fb *fakeBackend) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := fb.identityFor(r); !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return false
	}
	return true
}

// statusOf mirrors the server-side status derivation used for filtering.
func (fb *fakeBackend) statusOf(tk *types.Ticket) string {
	return string(expiry.Classify(tk.ExpirationDate, fb.now, fb.threshold).Status)
}

// ---------------- auth handlers ----------------

func (fb *fakeBackend) handleRequestLink(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "request-link") {
		return
	}
	var req types.MagicLinkRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	fb.mu.Lock()
	known := fb.emails[req.Email]
	fb.mu.Unlock()
	if !known {
		writeDetail(w, http.StatusNotFound, "User not found. Contact your administrator for access.")
		return
	}
	writeJSON(w, http.StatusOK, types.MagicLinkResponse{Message: "Magic link sent to your email", Email: req.Email})
}

func (fb *fakeBackend) handleVerify(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "verify") {
		return
	}
	token := r.URL.Query().Get("token")
	fb.mu.Lock()
	id, ok := fb.tokens[token]
	if fb.used[token] {
		ok = false
	}
	if ok {
		fb.used[token] = true
		fb.creds["cred-"+token] = id
	}
	fb.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired magic link")
		return
	}
	writeJSON(w, http.StatusOK, types.VerifyResponse{
		AccessToken: "cred-" + token,
		TokenType:   "bearer",
		User:        &id,
	})
}

func (fb *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "me") {
		return
	}
	id, ok := fb.identityFor(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// ---------------- ticket handlers ----------------

func (fb *fakeBackend) handleList(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "list") {
		return
	}
	q := r.URL.Query()
	fb.mu.Lock()
	var out []types.Ticket
	for _, tk := range fb.tickets {
		if s := q.Get("status"); s != "" && fb.statusOf(tk) != s {
			continue
		}
		if s := q.Get("state"); s != "" && tk.State != s {
			continue
		}
		if s := q.Get("assigned_pm"); s != "" && tk.AssignedPM != s {
			continue
		}
		if s := q.Get("search"); s != "" &&
			!strings.Contains(tk.TicketNumber, s) && !strings.Contains(tk.JobName, s) {
			continue
		}
		out = append(out, *tk)
	}
	fb.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, types.TicketList{Tickets: out, Total: len(out)})
}

func (fb *fakeBackend) handleGet(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "get") {
		return
	}
	fb.mu.Lock()
	tk, ok := fb.tickets[mux.Vars(r)["id"]]
	var cp types.Ticket
	if ok {
		cp = *tk
	}
	fb.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (fb *fakeBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "create") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	var req types.CreateTicketRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, tk := range fb.tickets {
		if tk.TicketNumber == req.TicketNumber {
			writeDetail(w, http.StatusConflict, "Ticket number already exists")
			return
		}
	}
	exp := req.ExpirationDate
	if exp == nil {
		d := expiry.ExpirationFor(req.SubmitDate, req.State)
		exp = &d
	}
	fb.nextID++
	tk := &types.Ticket{
		ID:             fmt.Sprintf("%d", fb.nextID),
		TicketNumber:   req.TicketNumber,
		JobName:        req.JobName,
		Address:        req.Address,
		State:          req.State,
		SubmitDate:     req.SubmitDate,
		ExpirationDate: exp,
		AssignedPM:     req.AssignedPM,
		Notes:          req.Notes,
	}
	fb.tickets[tk.ID] = tk
	writeJSON(w, http.StatusCreated, *tk)
}

func (fb *fakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "update") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	var req types.UpdateTicketRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	tk, ok := fb.tickets[mux.Vars(r)["id"]]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	}
	if req.JobName != nil {
		tk.JobName = *req.JobName
	}
	if req.ExpirationDate != nil {
		tk.ExpirationDate = req.ExpirationDate
	}
	if req.AssignedPM != nil {
		tk.AssignedPM = *req.AssignedPM
	}
	if req.Notes != nil {
		tk.Notes = *req.Notes
	}
	writeJSON(w, http.StatusOK, *tk)
}

func (fb *fakeBackend) handleRenew(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "renew") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	var req types.RenewTicketRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	tk, ok := fb.tickets[mux.Vars(r)["id"]]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	}
	exp := req.NewExpirationDate
	tk.ExpirationDate = &exp
	writeJSON(w, http.StatusOK, *tk)
}

func (fb *fakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "delete") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := fb.tickets[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	}
	delete(fb.tickets, id)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *fakeBackend) handleStats(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "stats") {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	stats := types.TicketStats{TicketsByState: make(map[string]int)}
	for _, tk := range fb.tickets {
		stats.TotalTickets++
		stats.TicketsByState[tk.State]++
		switch fb.statusOf(tk) {
		case string(expiry.StatusExpired):
			stats.ExpiredTickets++
		case string(expiry.StatusExpiringSoon):
			stats.ExpiringSoonTickets++
		default:
			stats.ActiveTickets++
		}
		if tk.ExpirationDate != nil {
			days := tk.ExpirationDate.DaysUntil(fb.now)
			if days >= 0 && days <= 7 {
				stats.ExpiringInNext7Days++
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// ---------------- user handlers ----------------

func (fb *fakeBackend) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "users-list") {
		return
	}
	fb.mu.Lock()
	out := make([]types.User, 0, len(fb.users))
	for _, u := range fb.users {
		out = append(out, *u)
	}
	fb.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (fb *fakeBackend) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "users-create") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	var req types.CreateUserRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, u := range fb.users {
		if u.Email == req.Email {
			writeDetail(w, http.StatusConflict, "User with this email already exists")
			return
		}
	}
	fb.nextUser++
	u := &types.User{
		ID:       fmt.Sprintf("u%d", fb.nextUser),
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	fb.users[u.ID] = u
	fb.emails[u.Email] = true
	writeJSON(w, http.StatusCreated, *u)
}

func (fb *fakeBackend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "users-update") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	var req types.UpdateUserRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	u, ok := fb.users[mux.Vars(r)["id"]]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	writeJSON(w, http.StatusOK, *u)
}

func (fb *fakeBackend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if fb.track(w, "users-delete") {
		return
	}
	if !fb.requireAuth(w, r) {
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := fb.users[id]; !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	delete(fb.users, id)
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- client helpers ----------------

// newTestClient builds a Client against fb with an in-memory session store
// and fb's fixed clock.
func newTestClient(t *testing.T, fb *fakeBackend, opts ...Option) (*Client, *session.MemStore) {
	t.Helper()
	store := session.NewMemStore()
	base := []Option{
		WithSessionStore(store),
		WithClock(fb.clock),
		WithReadRetries(1),
	}
	c, err := New(fb.srv.URL, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, store
}

// login authenticates c through a one-off magic-link token.
func (fb *fakeBackend) login(t *testing.T, c *Client) types.Identity {
	t.Helper()
	id := types.Identity{ID: "u1", Email: "pm@example.com", FullName: "Pat Miller", Role: "editor"}
	token := fmt.Sprintf("tok-%d", time.Now().UnixNano())
	fb.addToken(token, id)
	got, err := c.VerifyMagicLink(context.Background(), token)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != id.ID {
		t.Fatalf("login identity = %+v", got)
	}
	return id
}

func testDate(t *testing.T, s string) expiry.Date {
	t.Helper()
	d, err := expiry.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func datePtr(d expiry.Date) *expiry.Date { return &d }
