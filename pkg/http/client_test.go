package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"umbrella-reminder/pkg/log"
)

type payload struct {
	Name string `json:"name"`
}

type recordingLogger struct {
	requests []string
	failures []int
}

func (l *recordingLogger) LogRequest(method, url string, _ map[string]string, _ string) {
	l.requests = append(l.requests, method+" "+url)
}

func (l *recordingLogger) LogResponseSuccess(string, string, map[string]string, string, int, string, int64) {
}

func (l *recordingLogger) LogResponseError(_, _ string, _ map[string]string, _ string, status int, _ string, _ int64, _ error) {
	l.failures = append(l.failures, status)
}

func TestRequestDecodesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Equal(t, "override", r.Header.Get("X-Request"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"name":"paris"}`))
	}))
	defer server.Close()

	client := NewHttpClient(server.URL+"/", ClientOptions{
		DefaultQueryParams: map[string]string{"appid": "key"},
		DefaultHeaders:     map[string]string{"X-Test": "yes"},
	})

	successResp, errResp, status, err := client.Request().
		WithPath("items").
		WithQueryParams(map[string]string{"q": "Paris"}).
		WithHeaders(map[string]string{"X-Request": "override"}).
		WithSuccessResp(&payload{}).
		Execute()

	require.NoError(t, err)
	assert.Nil(t, errResp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paris", successResp.(*payload).Name)
}

func TestRequestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"city not found"}`))
	}))
	defer server.Close()

	logger := &recordingLogger{}
	client := NewHttpClient(server.URL, ClientOptions{Logger: logger})

	_, errResp, status, err := client.Request().
		WithPath("/weather").
		WithSuccessResp(&payload{}).
		WithErrorResp(&payload{}).
		Execute()

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "city not found", errResp.(*payload).Name)
	assert.Equal(t, []int{http.StatusNotFound}, logger.failures)
}

func TestRequestDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	client := NewHttpClient(server.URL, ClientOptions{})

	_, _, _, err := client.Request().WithSuccessResp(&payload{}).Execute()

	assert.ErrorContains(t, err, "failed to decode response body")
}

func TestPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"pune"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"-Nabc"}`))
	}))
	defer server.Close()

	client := NewHttpClient(server.URL, ClientOptions{})

	successResp, _, status, err := client.Request().
		WithMethod(POST).
		WithPath("/reminders.json").
		WithBody(payload{Name: "pune"}).
		WithSuccessResp(&payload{}).
		Execute()

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "-Nabc", successResp.(*payload).Name)
}

func TestRequestHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHttpClient(server.URL, ClientOptions{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, _, err := client.Request().WithContext(ctx).Execute()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransportErrorOmitsQueryString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	core, observed := observer.New(zapcore.DebugLevel)
	previous := log.Logger.Desugar()
	log.Replace(zap.New(core))
	t.Cleanup(func() { log.Replace(previous) })

	client := NewHttpClient(server.URL, ClientOptions{
		DefaultQueryParams: map[string]string{"appid": "secret-key"},
		Logger:             ZapLogger{Name: "test"},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, _, err := client.Request().WithContext(ctx).WithPath("/data").Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "secret-key")
	assert.Contains(t, err.Error(), server.URL+"/data")

	failures := observed.FilterMessage("Outbound request failed").All()
	require.Len(t, failures, 1)
	for _, value := range failures[0].ContextMap() {
		assert.NotContains(t, fmt.Sprint(value), "secret-key")
	}
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather",
		stripQuery("https://api.openweathermap.org/data/2.5/weather?q=Paris&appid=secret"))
}

func TestRequestLogsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	logger := &recordingLogger{}
	client := NewHttpClient(server.URL, ClientOptions{Logger: logger})
	_, _, _, err := client.Request().WithMethod(DELETE).WithPath("/a").Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"DELETE " + server.URL + "/a"}, logger.requests)
}
