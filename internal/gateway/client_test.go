package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.New(logger.LevelOff, nil), opts...)
}

func fastRetry(c *Client) {
	c.newBackoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 5)
	}
}

func TestFetchMany(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/recipes", r.URL.Path)
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		fmt.Fprint(w, `{"recipes":[{"id":1,"name":"Classic Margherita Pizza","rating":4.6,"cuisine":"Italian","tags":["Pizza"]}],"total":50,"skip":0,"limit":1}`)
	})

	got, err := c.FetchMany(context.Background(), 200, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "Italian", got[0].Cuisine)
	assert.Equal(t, []string{"Pizza"}, got[0].Tags)
}

func TestCreatePostsDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recipes/add", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var d domain.Draft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "New Dish", d.Name)

		out := d.Recipe(101)
		assert.NoError(t, json.NewEncoder(w).Encode(out))
	})

	got, err := c.Create(context.Background(), domain.Draft{Name: "New Dish", Servings: 1, CaloriesPerServing: 300})
	require.NoError(t, err)
	assert.Equal(t, 101, got.ID)
	assert.Equal(t, "New Dish", got.Name)
}

func TestUpdateSendsOnlySetFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/recipes/7", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"rating":4.5}`, string(raw))

		fmt.Fprint(w, `{"id":7,"name":"Pasta","rating":4.5}`)
	})

	got, err := c.Update(context.Background(), 7, domain.Patch{Rating: domain.Ptr(4.5)})
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
}

func TestDeleteAcceptsAnySuccess(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/recipes/3", r.URL.Path)
				w.WriteHeader(status)
				if status == http.StatusOK {
					fmt.Fprint(w, `{"id":3,"isDeleted":true}`)
				}
			})
			assert.NoError(t, c.Delete(context.Background(), 3))
		})
	}
}

func TestHTTPErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json body is compacted", http.StatusNotFound, "{\n  \"message\": \"Recipe with id '999' not found\"\n}", `HTTP 404: {"message":"Recipe with id '999' not found"}`},
		{"text body", http.StatusBadGateway, "upstream exploded\n", "HTTP 502: upstream exploded"},
		{"empty body", http.StatusInternalServerError, "", "HTTP 500: Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			err := c.Delete(context.Background(), 999)
			require.Error(t, err)

			var he *HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.status, he.StatusCode)
			assert.Equal(t, tt.want, he.Error())
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	ids := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
		fmt.Fprint(w, `{"recipes":[],"total":0}`)
	})

	for i := 0; i < 2; i++ {
		_, err := c.FetchMany(context.Background(), 10, 0)
		require.NoError(t, err)
	}
	close(ids)
	var seen []string
	for id := range ids {
		seen = append(seen, id)
	}
	require.Len(t, seen, 2)
	for _, id := range seen {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "request id %q", id)
	}
	assert.NotEqual(t, seen[0], seen[1])
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"recipes":[{"id":1,"name":"Taco"}],"total":1}`)
	}, WithRetry(time.Second))
	fastRetry(c)

	got, err := c.FetchMany(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, WithRetry(time.Second))
	fastRetry(c)

	_, err := c.FetchMany(context.Background(), 10, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestMutationsAreNotRetriedByTheClient(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetry(time.Second))
	fastRetry(c)

	_, err := c.Create(context.Background(), domain.Draft{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAll(t *testing.T) {
	const total = 25
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

		env := listEnvelope{Total: total, Skip: skip, Limit: limit, Recipes: []domain.Recipe{}}
		for id := skip + 1; id <= total && id <= skip+limit; id++ {
			env.Recipes = append(env.Recipes, domain.Recipe{ID: id})
		}
		assert.NoError(t, json.NewEncoder(w).Encode(env))
	})

	got, err := c.FetchAll(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, total)
	for i, r := range got {
		assert.Equal(t, i+1, r.ID)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &HTTPError{StatusCode: 503}, true},
		{"rate limited", &HTTPError{StatusCode: 429}, true},
		{"not found", &HTTPError{StatusCode: 404}, false},
		{"wrapped server error", fmt.Errorf("gateway: delete 1: %w", &HTTPError{StatusCode: 500}), true},
		{"canceled", fmt.Errorf("request failed: %w", context.Canceled), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transient(tt.err))
		})
	}
}

func TestTransportErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, logger.New(logger.LevelOff, nil))
	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, Transient(err))
	assert.Equal(t, 0, StatusCode(err))
}
