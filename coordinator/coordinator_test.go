package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	var gotMethod, gotSensor, gotContentType string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		gotSensor = r.PostForm.Get("sensor")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := New(&Config{Url: srv.URL + "/ping", Hostname: "sensor-12"})
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "sensor-12", gotSensor)
}

func TestNotifyIgnoresResponseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n, err := New(&Config{Url: srv.URL, Hostname: "sensor-12"})
	require.NoError(t, err)

	assert.NoError(t, n.Notify(context.Background()))
}

func TestNotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	n, err := New(&Config{Url: srv.URL, Hostname: "sensor-12"})
	require.NoError(t, err)

	assert.Error(t, n.Notify(context.Background()))
}

func TestNewDefaults(t *testing.T) {
	n, err := New(&Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultUrl, n.url)
	assert.NotEmpty(t, n.hostname)
	assert.NotNil(t, n.client)
}
