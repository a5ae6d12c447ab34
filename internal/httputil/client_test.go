package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientQueuedResponses(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"success": true}`)
	mock.AddResponse(http.StatusNotFound, `{"error": "run not found"}`)

	resp, err := mock.Get("http://race.local/api/line/run?id=abc")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"success": true}`, string(body))

	resp, err = mock.Get("http://race.local/api/line/run?id=missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Queue exhausted: answers an empty 200.
	resp, err = mock.Get("http://race.local/api/line/runs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 3, mock.RequestCount())
}

func TestMockClientRecordsPostRequests(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"success": true}`)

	_, err := mock.Post("http://race.local/api/line/generate", "application/json",
		strings.NewReader(`{"trackPoints": []}`))
	require.NoError(t, err)

	req := mock.GetRequest(0)
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "/api/line/generate", req.URL.Path)

	assert.Nil(t, mock.GetRequest(1))
	assert.Nil(t, mock.GetRequest(-1))
}

func TestMockClientErrors(t *testing.T) {
	queuedErr := errors.New("connection refused")
	mock := NewMockHTTPClient()
	mock.AddErrorResponse(queuedErr)
	_, err := mock.Get("http://race.local/api/physics")
	assert.Equal(t, queuedErr, err)

	defaultErr := errors.New("network unreachable")
	mock = NewMockHTTPClient()
	mock.DefaultError = defaultErr
	_, err = mock.Get("http://race.local/api/physics")
	assert.Equal(t, defaultErr, err)
}

func TestMockClientDoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTeapot,
			Body:       io.NopCloser(strings.NewReader("custom")),
			Request:    req,
		}, nil
	}

	resp, err := mock.Get("http://race.local/api/physics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestStandardClientRoundTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/physics", r.URL.Path)
			w.Write([]byte(`{"grip": 1.0}`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	client := NewStandardClient(nil)

	resp, err := client.Get(server.URL + "/api/physics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, `{"grip": 1.0}`, string(body))

	resp, err = client.Post(server.URL+"/api/physics", "application/json",
		strings.NewReader(`{"grip": 1.2}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/physics", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewStandardClientWrapsGivenClient(t *testing.T) {
	custom := &http.Client{}
	assert.Same(t, custom, NewStandardClient(custom).Client)
	assert.Same(t, http.DefaultClient, NewStandardClient(nil).Client)
}
