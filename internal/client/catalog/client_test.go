package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
	"github.com/inclick-mx/inclick-cli/internal/common"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

type memStore struct {
	values map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	return m.values[key], nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.values = make(map[string][]byte)
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMockMode_ListCourses(t *testing.T) {
	c := New("", newMemStore(), testLogger())
	require.True(t, c.MockMode())

	courses, err := c.ListCourses(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Len(t, courses, 3)
}

func TestMockMode_ListCourses_Filters(t *testing.T) {
	c := New("", newMemStore(), testLogger())

	tests := []struct {
		name    string
		params  ListParams
		wantIDs []string
	}{
		{"query matches title", ListParams{Query: "storytelling"}, []string{"course-data-storytelling"}},
		{"query matches tag", ListParams{Query: "typescript"}, []string{"course-frontend-foundations"}},
		{"category exact match", ListParams{Category: "Datos"}, []string{"course-data-storytelling"}},
		{"category case insensitive", ListParams{Category: "frontend"}, []string{"course-frontend-foundations"}},
		{"no match", ListParams{Query: "cobol"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := c.ListCourses(context.Background(), tt.params)
			require.NoError(t, err)
			ids := make([]string, 0, len(courses))
			for _, course := range courses {
				ids = append(ids, course.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMockMode_GetCourse(t *testing.T) {
	c := New("", newMemStore(), testLogger())

	course, err := c.GetCourse(context.Background(), "course-ai-product")
	require.NoError(t, err)
	assert.Equal(t, "IA aplicada para product managers", course.Title)

	_, err = c.GetCourse(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMockMode_GetUserPath(t *testing.T) {
	c := New("", newMemStore(), testLogger())

	path, err := c.GetUserPath(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", path.UserID)
	assert.Len(t, path.Nodes, 3)
	assert.Equal(t, models.PathNodeInProgress, path.Nodes[0].Status)
}

func TestListCourses_SendsAPIKeyAndParams(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]models.Course{{ID: "c1", Title: "Curso"}})
	}))
	defer srv.Close()

	secrets := newMemStore()
	c := New(srv.URL, secrets, testLogger())
	require.NoError(t, c.SetAPIKey(context.Background(), "nexus-key"))

	courses, err := c.ListCourses(context.Background(), ListParams{Query: "react", Category: "Frontend"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, "nexus-key", gotKey)
	assert.Equal(t, "category=Frontend&q=react", gotQuery)
}

func TestGetCourse_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Course{ID: "c1", Title: "Curso"})
	}))
	defer srv.Close()

	c := New(srv.URL, newMemStore(), testLogger())

	course, err := c.GetCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	assert.Equal(t, 3, calls)
}

func TestGetCourse_ServerErrorExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	}))
	defer srv.Close()

	c := New(srv.URL, newMemStore(), testLogger())

	_, err := c.GetCourse(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, retryAttempts+1, calls)
}

func TestGetCourse_ClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid api key"})
	}))
	defer srv.Close()

	c := New(srv.URL, newMemStore(), testLogger())

	_, err := c.GetCourse(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, 1, calls)
}

func TestGetCourse_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, newMemStore(), testLogger())

	_, err := c.GetCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAPIKey_RoundTrip(t *testing.T) {
	c := New("", newMemStore(), testLogger())

	key, err := c.APIKey(context.Background())
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, c.SetAPIKey(context.Background(), "secret"))
	key, err = c.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}
