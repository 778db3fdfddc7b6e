package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/dispatch/internal/domain/optimize"
)

func testPayload() *optimize.Payload {
	return &optimize.Payload{
		Locations: []optimize.Location{
			{Index: 0, Lat: 51.0447, Lng: -114.0719},
			{Index: 1, Lat: 51.1215, Lng: -114.0076},
		},
		Technicians: []optimize.Technician{
			{ID: 7, StartLocationIndex: 0, EarliestStartISO: "2026-08-26T15:00:00Z", LatestEndISO: "2026-08-26T23:00:00Z"},
		},
		Items: []optimize.Item{
			{ID: "job_42", LocationIndex: 1, DurationSeconds: 3600, Priority: 5, EligibleTechnicianIDs: []int64{7}},
		},
		FixedConstraints: []any{},
		TravelTimeMatrix: [][]int64{{0, 840}, {900, 0}},
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")

	_, err = NewClient(ClientOptions{BaseURL: "http://localhost:9090"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token source")

	client, err := NewClient(ClientOptions{BaseURL: "http://localhost:9090", BypassAuth: true})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClient_Solve(t *testing.T) {
	var gotAuth, gotContentType string
	var gotPayload optimize.Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/solve", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		resp := optimize.Response{
			Status: optimize.StatusSuccess,
			Routes: []optimize.Route{
				{TechnicianID: 7, Stops: []optimize.Stop{{ItemID: "job_42", StartTimeISO: "2026-08-26T16:00:00Z"}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		BaseURL: server.URL,
		Tokens:  StaticTokens("svc-token"),
	})
	require.NoError(t, err)

	out, err := client.Solve(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, "Bearer svc-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Len(t, gotPayload.Items, 1)
	assert.Equal(t, "job_42", gotPayload.Items[0].ID)

	assert.Equal(t, optimize.StatusSuccess, out.Status)
	require.Len(t, out.Routes, 1)
	assert.Equal(t, int64(7), out.Routes[0].TechnicianID)
}

func TestClient_Solve_BypassAuthOmitsHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(optimize.Response{Status: optimize.StatusSuccess})
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseURL: server.URL, BypassAuth: true})
	require.NoError(t, err)

	_, err = client.Solve(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Solve_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "solver overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseURL: server.URL, BypassAuth: true})
	require.NoError(t, err)

	_, err = client.Solve(context.Background(), testPayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Contains(t, err.Error(), "solver overloaded")
}

func TestClient_Solve_ErrorStatusPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(optimize.Response{
			Status:  optimize.StatusError,
			Message: "infeasible",
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseURL: server.URL, BypassAuth: true})
	require.NoError(t, err)

	// A decodable error reply is not a transport error; the results processor
	// decides what to do with it.
	out, err := client.Solve(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, optimize.StatusError, out.Status)
	assert.Equal(t, "infeasible", out.Message)
}
