package http

import (
	"net/url"

	"go.uber.org/zap"

	"umbrella-reminder/pkg/log"
)

// HTTPLogger interface defines methods for logging HTTP requests and responses
type HTTPLogger interface {
	// LogRequest is called before the request is sent with all request data formed
	LogRequest(method, url string, headers map[string]string, body string)

	// LogResponseSuccess is called immediately after receiving a successful response (non-error HTTP status)
	LogResponseSuccess(method, url string, headers map[string]string, body string, httpStatus int, responseBody string, latency int64)

	// LogResponseError is called immediately after receiving an error response or a transport failure
	LogResponseError(method, url string, headers map[string]string, body string, httpStatus int, responseBody string, latency int64, err error)
}

type noopLogger struct{}

func (noopLogger) LogRequest(string, string, map[string]string, string) {}

func (noopLogger) LogResponseSuccess(string, string, map[string]string, string, int, string, int64) {}

func (noopLogger) LogResponseError(string, string, map[string]string, string, int, string, int64, error) {
}

// ZapLogger logs outbound calls through pkg/log at debug level, errors at warn.
// Query strings are dropped since they carry API keys and auth tokens.
type ZapLogger struct {
	Name string
}

func (l ZapLogger) LogRequest(method, rawURL string, _ map[string]string, _ string) {
	log.Debug("Outbound request",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", stripQuery(rawURL)))
}

func (l ZapLogger) LogResponseSuccess(method, rawURL string, _ map[string]string, _ string, httpStatus int, _ string, latency int64) {
	log.Debug("Outbound request succeeded",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", stripQuery(rawURL)),
		zap.Int("status", httpStatus),
		zap.Int64("latency_ms", latency))
}

func (l ZapLogger) LogResponseError(method, rawURL string, _ map[string]string, _ string, httpStatus int, responseBody string, latency int64, err error) {
	log.Warn("Outbound request failed",
		zap.String("client", l.Name),
		zap.String("method", method),
		zap.String("url", stripQuery(rawURL)),
		zap.Int("status", httpStatus),
		zap.String("response", responseBody),
		zap.Int64("latency_ms", latency),
		zap.Error(err))
}

func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	return u.String()
}
