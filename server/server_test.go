package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"gocheckout/api"
	"gocheckout/checkout"
	"gocheckout/internal/config"
	"gocheckout/server"
)

type quietLogger struct{}

func (l *quietLogger) FeatureEvent(feature, serial, text string) {}
func (l *quietLogger) Debug(text string)                         {}
func (l *quietLogger) Warn(text string)                          {}
func (l *quietLogger) Error(text string, err error)              {}
func (l *quietLogger) RawDataEvent(direction, data string)       {}

const notificationBody = `<?xml version="1.0" encoding="UTF-8"?>
<new-order-notification xmlns="http://checkout.google.com/schema/2" serial-number="bea6bc-1066">
  <google-order-number>841171949013218</google-order-number>
</new-order-notification>`

func newBoundary(t *testing.T, handlers *checkout.Handlers) *httprouter.Router {
	t.Helper()
	conf := &config.Config{}
	conf.Merchant.Id = "1234567"
	conf.Merchant.Key = "secret"

	logger := &quietLogger{}
	dispatcher := checkout.NewDispatcher(handlers)
	dispatcher.SetLogger(logger)

	s := server.NewServer(conf, logger)
	s.SetDispatcher(dispatcher)

	router := httprouter.New()
	s.Register(router)
	return router
}

func post(router *httprouter.Router, body string, authorize func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(body))
	if authorize != nil {
		authorize(req)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func asMerchant(r *http.Request) {
	r.SetBasicAuth("1234567", "secret")
}

func TestServer_AcknowledgesNotification(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := post(router, notificationBody, asMerchant)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "text/xml")
	require.Contains(t, recorder.Body.String(), "<notification-acknowledgment")
	require.Contains(t, recorder.Body.String(), `serial-number="bea6bc-1066"`)
}

func TestServer_RejectsMissingAuthorization(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := post(router, notificationBody, nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.NotContains(t, recorder.Body.String(), "notification-acknowledgment")
}

func TestServer_RejectsWrongCredentials(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := post(router, notificationBody, func(r *http.Request) {
		r.SetBasicAuth("1234567", "guessed")
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_RejectsEmptyBody(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := post(router, "", asMerchant)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_RejectsMalformedBody(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := post(router, "<new-order-notification><broken>", asMerchant)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.NotContains(t, recorder.Body.String(), "notification-acknowledgment")
}

func TestServer_FailedHandlerWithholdsAcknowledgment(t *testing.T) {
	// an error not wrapping ErrIgnoreNotification must answer non-2xx so
	// the processor redelivers
	router := newBoundary(t, &checkout.Handlers{
		NewOrder: func(ctx *checkout.Context) error {
			return http.ErrHandlerTimeout
		},
	})
	recorder := post(router, notificationBody, asMerchant)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.NotContains(t, recorder.Body.String(), "notification-acknowledgment")
}

func TestServer_SuppressedFailureStillAnswers200(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{
		NewOrder: func(ctx *checkout.Context) error {
			return checkout.Ignore("duplicate order")
		},
	})

	recorder := post(router, notificationBody, asMerchant)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "<notification-acknowledgment")
}

func TestServer_ApiEndpoints(t *testing.T) {
	conf := &config.Config{}
	logger := &quietLogger{}
	s := server.NewServer(conf, logger)
	s.SetApiHandler(func(ac *api.Call) []byte {
		if ac.CallType == api.ReadNotifications {
			return []byte(`[{"kind":"new-order"}]`)
		}
		return nil
	})
	router := httprouter.New()
	s.Register(router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/journal", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "application/json")
	require.Contains(t, recorder.Body.String(), "new-order")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/failures", nil))
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestServer_MonitorWithoutFeed(t *testing.T) {
	router := newBoundary(t, &checkout.Handlers{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/monitor", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}
