package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProfileRouter(t *testing.T) (*gin.Engine, *MemoryStore, *MemoryTransactionStore) {
	t.Helper()

	store := NewMemoryStore()
	txs := NewMemoryTransactionStore()
	for _, p := range SeedProfiles() {
		require.NoError(t, store.Put(context.Background(), p))
	}

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewHandler(store, txs, NewAggregator(txs, store)).RegisterRoutes(v1)
	return router, store, txs
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListProfiles(t *testing.T) {
	router, _, _ := newProfileRouter(t)

	w := doJSON(router, "GET", "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profiles []UserProfile `json:"profiles"`
		Count    int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, "emma_w", resp.Profiles[0].UserID) // sorted by user ID
}

func TestGetProfile(t *testing.T) {
	router, _, _ := newProfileRouter(t)

	w := doJSON(router, "GET", "/api/v1/profiles/sarah123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profile UserProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sarah123", resp.Profile.UserID)
	assert.Equal(t, 85.0, resp.Profile.AvgAmount)
	assert.Contains(t, resp.Profile.KnownDevices, "iPhone")
}

func TestGetProfile_NotFound(t *testing.T) {
	router, _, _ := newProfileRouter(t)

	w := doJSON(router, "GET", "/api/v1/profiles/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "not_found", resp["error"])
}

func TestPutProfile(t *testing.T) {
	router, store, _ := newProfileRouter(t)

	w := doJSON(router, "PUT", "/api/v1/profiles/newuser", map[string]any{
		"hoursStart":   8,
		"hoursEnd":     20,
		"avgAmount":    42.5,
		"knownDevices": []string{"Android"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := store.Get(context.Background(), "newuser")
	require.NoError(t, err)
	assert.Equal(t, 42.5, p.AvgAmount)
	assert.Equal(t, []string{"Android"}, p.KnownDevices)
}

func TestPutProfile_Validation(t *testing.T) {
	router, _, _ := newProfileRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"hour out of range", map[string]any{"hoursStart": 25, "hoursEnd": 20, "avgAmount": 10.0}},
		{"negative hour", map[string]any{"hoursStart": -1, "hoursEnd": 20, "avgAmount": 10.0}},
		{"negative amount", map[string]any{"hoursStart": 9, "hoursEnd": 17, "avgAmount": -5.0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "PUT", "/api/v1/profiles/u1", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAggregateProfilesEndpoint(t *testing.T) {
	router, store, txs := newProfileRouter(t)

	require.NoError(t, txs.RecordBatch(context.Background(), []*Transaction{
		{UserID: "history_user", Amount: 100, Device: "iPad", Timestamp: "2026-01-01T10:00:00Z"},
		{UserID: "history_user", Amount: 300, Device: "iPad", Timestamp: "2026-01-02T10:00:00Z"},
	}))

	w := doJSON(router, "POST", "/api/v1/profiles/aggregate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ProfilesBuilt int `json:"profilesBuilt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ProfilesBuilt)

	p, err := store.Get(context.Background(), "history_user")
	require.NoError(t, err)
	assert.Equal(t, 200.0, p.AvgAmount)
	assert.Equal(t, []int{10}, p.CommonHours)
}

func TestListTransactionsEndpoints(t *testing.T) {
	router, _, txs := newProfileRouter(t)

	require.NoError(t, txs.RecordBatch(context.Background(), []*Transaction{
		{UserID: "u1", Amount: 10},
		{UserID: "u1", Amount: 20},
		{UserID: "u2", Amount: 30},
	}))

	w := doJSON(router, "GET", "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var all struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 3, all.Count)

	w = doJSON(router, "GET", "/api/v1/transactions/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var byUser struct {
		UserID       string        `json:"userId"`
		Transactions []Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &byUser))
	assert.Equal(t, "u1", byUser.UserID)
	assert.Len(t, byUser.Transactions, 2)

	w = doJSON(router, "GET", "/api/v1/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 1, all.Count)
}
