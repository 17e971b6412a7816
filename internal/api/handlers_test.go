package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartysub/tracker-service/internal/app"
	"github.com/smartysub/tracker-service/internal/domain"
	"github.com/smartysub/tracker-service/internal/store"
)

// memoryStore backs every service interface in-memory, the same way the real
// repository backs them all against Postgres.
type memoryStore struct {
	subs    map[string]*domain.Subscription
	users   map[string]*domain.User
	catalog map[string]*domain.DefaultSubscription
	nextID  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		subs:    make(map[string]*domain.Subscription),
		users:   make(map[string]*domain.User),
		catalog: make(map[string]*domain.DefaultSubscription),
	}
}

func (m *memoryStore) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *memoryStore) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	copied := *sub
	copied.ID = "sub-" + m.id()
	m.subs[copied.ID] = &copied
	return &copied, nil
}

func (m *memoryStore) GetSubscription(ctx context.Context, id, ownerID string) (*domain.Subscription, error) {
	sub, ok := m.subs[id]
	if !ok || sub.UserID != ownerID {
		return nil, store.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (m *memoryStore) ListSubscriptions(ctx context.Context, ownerID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, sub := range m.subs {
		if sub.UserID == ownerID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	if _, ok := m.subs[sub.ID]; !ok {
		return nil, store.ErrSubscriptionNotFound
	}
	copied := *sub
	m.subs[sub.ID] = &copied
	return &copied, nil
}

func (m *memoryStore) UpdateReminderSettings(ctx context.Context, id, ownerID string, isActive bool, daysBefore int) (*domain.Subscription, error) {
	sub, ok := m.subs[id]
	if !ok || sub.UserID != ownerID {
		return nil, store.ErrSubscriptionNotFound
	}
	sub.ReminderSettings = domain.ReminderSettings{IsActive: isActive, DaysBefore: daysBefore}
	copied := *sub
	return &copied, nil
}

func (m *memoryStore) DeleteSubscription(ctx context.Context, id, ownerID string) error {
	sub, ok := m.subs[id]
	if !ok || sub.UserID != ownerID {
		return store.ErrSubscriptionNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *memoryStore) GetDefaultSubscription(ctx context.Context, id string) (*domain.DefaultSubscription, error) {
	entry, ok := m.catalog[id]
	if !ok {
		return nil, store.ErrCatalogEntryNotFound
	}
	return entry, nil
}

func (m *memoryStore) ListDefaultSubscriptions(ctx context.Context) ([]domain.DefaultSubscription, error) {
	var out []domain.DefaultSubscription
	for _, entry := range m.catalog {
		out = append(out, *entry)
	}
	return out, nil
}

func (m *memoryStore) CreateDefaultSubscription(ctx context.Context, entry *domain.DefaultSubscription) (*domain.DefaultSubscription, error) {
	copied := *entry
	copied.ID = "cat-" + m.id()
	m.catalog[copied.ID] = &copied
	return &copied, nil
}

func (m *memoryStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.UserName == user.UserName {
			return nil, store.ErrDuplicateUser
		}
	}
	copied := *user
	copied.ID = "user-" + m.id()
	m.users[copied.ID] = &copied
	return &copied, nil
}

func (m *memoryStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == login || user.UserName == login {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memoryStore) SetUserCurrency(ctx context.Context, userID, code string) (*domain.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user.Currency = code
	return user, nil
}

func (m *memoryStore) GrantPremium(ctx context.Context, userID string, expiresAt time.Time) (*domain.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user.IsPremium = true
	user.PremiumExpiresAt = &expiresAt
	return user, nil
}

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()
	mem := newMemoryStore()
	handler := NewHandler(
		app.NewService(mem, mem),
		app.NewUserService(mem),
		mem,
		testSecret,
		time.Hour,
		30,
	)
	srv := httptest.NewServer(NewRouter(handler, testSecret))
	t.Cleanup(srv.Close)
	return srv, mem
}

func seedUser(t *testing.T, mem *memoryStore) (userID, token string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user, err := mem.CreateUser(context.Background(), &domain.User{
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Currency:     domain.DefaultCurrency,
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	token, err = GenerateToken(testSecret, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return user.ID, token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateSubscriptionEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	_, token := seedUser(t, mem)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/subscriptions/", token, map[string]any{
		"name":              "Netflix",
		"cost":              "9.99",
		"start_date":        "2024-01-15",
		"renewal_frequency": "monthly",
		"category":          "Entertainment",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var sub domain.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if sub.Name != "Netflix" {
		t.Fatalf("name = %q, want Netflix", sub.Name)
	}
	if got := sub.NextRenewalDate.Format("2006-01-02"); got != "2024-02-15" {
		t.Fatalf("next renewal = %s, want 2024-02-15", got)
	}
}

func TestCreateSubscriptionEndpoint_BadDate(t *testing.T) {
	srv, mem := newTestServer(t)
	_, token := seedUser(t, mem)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/subscriptions/", token, map[string]any{
		"name":              "Netflix",
		"cost":              "9.99",
		"start_date":        "15/01/2024",
		"renewal_frequency": "monthly",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSubscriptionEndpoints_RequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/subscriptions/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestUpdateReminderSettingsEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	userID, token := seedUser(t, mem)

	renewal := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	reminder := renewal.AddDate(0, 0, -1)
	mem.subs["sub-1"] = &domain.Subscription{
		ID:               "sub-1",
		UserID:           userID,
		Name:             "Netflix",
		Cost:             decimal.NewFromFloat(9.99),
		StartDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RenewalFrequency: domain.FrequencyMonthly,
		NextRenewalDate:  renewal,
		ReminderDate:     &reminder,
		ReminderSettings: domain.ReminderSettings{IsActive: true, DaysBefore: 1},
	}

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/subscriptions/sub-1/reminders", token, map[string]any{
		"is_active":   false,
		"days_before": 5,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var sub domain.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if sub.ReminderSettings.IsActive || sub.ReminderSettings.DaysBefore != 5 {
		t.Fatalf("unexpected settings %+v", sub.ReminderSettings)
	}
	// The schedule dates stay put; only the next renewal recomputes them.
	if got := sub.NextRenewalDate.Format("2006-01-02"); got != "2024-04-15" {
		t.Fatalf("renewal date moved to %s", got)
	}

	badLead := doJSON(t, http.MethodPut, srv.URL+"/api/v1/subscriptions/sub-1/reminders", token, map[string]any{
		"is_active":   true,
		"days_before": 7,
	})
	if badLead.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unsupported lead", badLead.StatusCode)
	}
}

func TestRegisterAndLoginEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	register := doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/register", "", map[string]any{
		"user_name": "bob",
		"email":     "bob@example.com",
		"password":  "correct horse battery",
	})
	if register.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", register.StatusCode)
	}

	duplicate := doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/register", "", map[string]any{
		"user_name": "bob",
		"email":     "bob2@example.com",
		"password":  "correct horse battery",
	})
	if duplicate.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", duplicate.StatusCode)
	}

	login := doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/login", "", map[string]any{
		"email":    "bob@example.com",
		"password": "correct horse battery",
	})
	if login.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", login.StatusCode)
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(login.Body).Decode(&loginResp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("expected a token on login")
	}

	profile := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users", loginResp.Token, nil)
	if profile.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", profile.StatusCode)
	}
	var user domain.User
	if err := json.NewDecoder(profile.Body).Decode(&user); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Fatalf("profile email = %q, want bob@example.com", user.Email)
	}
}

func TestDeleteSubscriptionEndpoint_NotFound(t *testing.T) {
	srv, mem := newTestServer(t)
	_, token := seedUser(t, mem)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/subscriptions/missing", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
