package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/profilegraph/internal/connection"
	"github.com/vanshika/profilegraph/internal/domain"
	"github.com/vanshika/profilegraph/internal/logging"
	"github.com/vanshika/profilegraph/internal/metrics"
	"github.com/vanshika/profilegraph/internal/repository"
	"github.com/vanshika/profilegraph/internal/service"
)

type testAPI struct {
	handler http.Handler
	repo    *repository.MemoryRepository
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, direction domain.Direction) testAPI {
	t.Helper()
	repo := repository.NewMemory(direction)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := service.NewProfileService(repo,
		service.WithObserver(m),
		service.WithSourceDecorator(m.InstrumentSource),
		service.WithLogger(logging.Discard()),
	)
	handler := NewRouter(logging.Discard(), RouterDependencies{
		Health:  StoreHealthService{Store: repo},
		API:     NewAPIHandlers(logging.Discard(), svc),
		Metrics: m,
	})
	return testAPI{handler: handler, repo: repo, metrics: m}
}

func (a testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a testAPI) createProfile(t *testing.T, first string) domain.Profile {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/profiles", fmt.Sprintf(`{"first_name":%q,"last_name":"Doe","city":"Austin"}`, first))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (a testAPI) befriend(t *testing.T, from, to domain.ProfileID) {
	t.Helper()
	rec := a.do(t, http.MethodPost, fmt.Sprintf("/profiles/%d/friends/%d", from, to), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload["error"]
}

func TestProfileCRUD(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)

	created := api.createProfile(t, "Jane")
	assert.Equal(t, domain.ProfileID(1), created.ID)
	assert.True(t, created.Available, "available defaults to true")

	rec := api.do(t, http.MethodGet, "/profiles/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"img":"","first_name":"Jane","last_name":"Doe","phone":"","address":"","city":"Austin","state":"","zipcode":"","available":true}`, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/profiles", `{"id":1,"first_name":"Janet","last_name":"Doe","available":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Janet", updated.FirstName)
	assert.False(t, updated.Available)

	api.createProfile(t, "John")
	rec = api.do(t, http.MethodGet, "/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Janet", list[0].FirstName)

	rec = api.do(t, http.MethodDelete, "/profiles/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, updated, deleted)

	rec = api.do(t, http.MethodGet, "/profiles/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Profile not found", decodeError(t, rec))
}

func TestProfileValidation(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)

	cases := map[string]struct {
		method, body, want string
	}{
		"missing names":  {http.MethodPost, `{"city":"Austin"}`, "first_name is required; last_name is required"},
		"unknown field":  {http.MethodPost, `{"first_name":"a","last_name":"b","nickname":"c"}`, "invalid request body"},
		"bad image url":  {http.MethodPost, `{"first_name":"a","last_name":"b","img":"not a url"}`, "img is invalid (url)"},
		"malformed json": {http.MethodPost, `{`, "invalid request body"},
		"update no id":   {http.MethodPut, `{"first_name":"a","last_name":"b"}`, "id is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := api.do(t, tc.method, "/profiles", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), tc.want)
		})
	}

	rec := api.do(t, http.MethodGet, "/profiles/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/profiles", `{"id":42,"first_name":"a","last_name":"b"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFriendsEndpoints(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)
	a := api.createProfile(t, "A")
	b := api.createProfile(t, "B")
	c := api.createProfile(t, "C")
	api.befriend(t, a.ID, b.ID)
	api.befriend(t, a.ID, c.ID)

	rec := api.do(t, http.MethodGet, fmt.Sprintf("/profiles/%d/friends", a.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	assert.Equal(t, []domain.Profile{b, c}, friends)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/profiles/%d/friends", c.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/profiles/%d/friends/%d", a.ID, a.ID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/profiles/%d/friends/99", a.ID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/profiles/%d/friends/%d", a.ID, b.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/profiles/%d/friends/%d", a.ID, b.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/profiles/99/friends", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortestConnectionEndpoint(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)
	ids := make([]domain.ProfileID, 5)
	for i := range ids {
		ids[i] = api.createProfile(t, fmt.Sprintf("P%d", i+1)).ID
	}
	// 1-2, 1-3, 2-5, 3-4, 4-5 stored in both orientations
	for _, e := range [][2]int{{1, 2}, {1, 3}, {2, 5}, {3, 4}, {4, 5}} {
		api.befriend(t, ids[e[0]-1], ids[e[1]-1])
		api.befriend(t, ids[e[1]-1], ids[e[0]-1])
	}

	rec := api.do(t, http.MethodGet, "/profiles/1/shorter/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[2]`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/profiles/1/shorter/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[3]`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/profiles/1/shorter/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[2]`, rec.Body.String(), "direct friends return the target")

	rec = api.do(t, http.MethodGet, "/profiles/3/shorter/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[3]`, rec.Body.String())

	isolated := api.createProfile(t, "Isolated")
	rec = api.do(t, http.MethodGet, fmt.Sprintf("/profiles/1/shorter/%d", isolated.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No connection found", decodeError(t, rec))

	assert.Equal(t, float64(4), testutil.ToFloat64(api.metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(api.metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeNotFound)))
	assert.Positive(t, testutil.ToFloat64(api.metrics.NeighborLookupsTotal.WithLabelValues("ok")))
}

func TestShortestConnectionHonorsDirection(t *testing.T) {
	for _, tc := range []struct {
		direction domain.Direction
		status    int
	}{
		{domain.DirectionOutgoing, http.StatusNotFound},
		{domain.DirectionBoth, http.StatusOK},
	} {
		t.Run(string(tc.direction), func(t *testing.T) {
			api := newTestAPI(t, tc.direction)
			a := api.createProfile(t, "A")
			b := api.createProfile(t, "B")
			api.befriend(t, b.ID, a.ID)

			rec := api.do(t, http.MethodGet, fmt.Sprintf("/profiles/%d/shorter/%d", a.ID, b.ID), "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

type stubService struct {
	ProfileService
	err error
}

func (s stubService) ShortestConnection(context.Context, domain.ProfileID, domain.ProfileID) (connection.Connection, error) {
	return nil, s.err
}

func TestShortestConnectionErrorMapping(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"not found":   {connection.ErrNoConnection, http.StatusNotFound},
		"unavailable": {&connection.SourceError{ProfileID: 2, Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		"deadline":    {fmt.Errorf("%w: %w", connection.ErrCanceled, context.DeadlineExceeded), http.StatusGatewayTimeout},
		"unexpected":  {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := NewRouter(logging.Discard(), RouterDependencies{
				API: NewAPIHandlers(logging.Discard(), stubService{err: tc.err}),
			})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/1/shorter/3", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)
	rec := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	handler := NewRouter(logging.Discard(), RouterDependencies{Health: StoreHealthService{Store: failingPinger{}}})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is locked")
}

func TestRequestID(t *testing.T) {
	api := newTestAPI(t, domain.DirectionOutgoing)

	rec := api.do(t, http.MethodGet, "/healthz", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36, "generated ids are uuids")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpointAndCORS(t *testing.T) {
	registry := metrics.NewRegistry()
	m := metrics.NewMetrics(registry)
	handler := NewRouter(logging.Discard(), RouterDependencies{
		Metrics:        m,
		MetricsHandler: metrics.Handler(registry),
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `profilegraph_http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	preflight := httptest.NewRequest(http.MethodOptions, "/profiles", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	preflight.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
