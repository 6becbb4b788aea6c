package order_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gocheckout/order"
)

const requestReceived = `<?xml version="1.0" encoding="UTF-8"?>
<request-received xmlns="http://checkout.google.com/schema/2" serial-number="7121a2"/>`

const paymentDeclined = `<?xml version="1.0" encoding="UTF-8"?>
<error xmlns="http://checkout.google.com/schema/2" serial-number="7121a3">
  <error-code>PAYMENT_DECLINED</error-code>
  <error-message>The card was declined by the issuer.</error-message>
</error>`

type recordedRequest struct {
	body     string
	username string
	password string
	content  string
}

func newProcessor(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		username, password, _ := r.BasicAuth()
		requests = append(requests, recordedRequest{
			body:     string(body),
			username: username,
			password: password,
			content:  r.Header.Get("Content-Type"),
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newOrder(server *httptest.Server) *order.Order {
	client := order.NewClient("1234567", "secret", "sandbox", "GBP")
	client.SetEndpoint(server.URL)
	return client.Order("841171949013218")
}

func TestOrder_ChargeAccepted(t *testing.T) {
	server, requests := newProcessor(t, http.StatusOK, requestReceived)

	err := newOrder(server).Charge(context.Background(), "166.98")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	sent := (*requests)[0]
	require.Equal(t, "1234567", sent.username)
	require.Equal(t, "secret", sent.password)
	require.Contains(t, sent.content, "application/xml")
	require.Contains(t, sent.body, `<charge-order`)
	require.Contains(t, sent.body, `google-order-number="841171949013218"`)
	require.Contains(t, sent.body, `<amount currency="GBP">166.98</amount>`)
	require.Contains(t, sent.body, `xmlns="http://checkout.google.com/schema/2"`)
}

func TestOrder_ChargeWithoutAmountOmitsElement(t *testing.T) {
	server, requests := newProcessor(t, http.StatusOK, requestReceived)

	err := newOrder(server).Charge(context.Background(), "")
	require.NoError(t, err)
	require.NotContains(t, (*requests)[0].body, "<amount")
}

func TestOrder_CommandShapes(t *testing.T) {
	server, requests := newProcessor(t, http.StatusOK, requestReceived)
	accessor := newOrder(server)
	ctx := context.Background()

	require.NoError(t, accessor.Authorize(ctx))
	require.NoError(t, accessor.ChargeAndShip(ctx, "20.00"))
	require.NoError(t, accessor.Ship(ctx, "UPS", "Z9842W69871234"))
	require.NoError(t, accessor.Refund(ctx, "returned", "5.00"))
	require.NoError(t, accessor.Cancel(ctx, "out of stock", "restock expected in May"))

	require.Len(t, *requests, 5)
	require.Contains(t, (*requests)[0].body, "<authorize-order")
	require.Contains(t, (*requests)[1].body, "<charge-and-ship-order")
	require.Contains(t, (*requests)[2].body, "<deliver-order")
	require.Contains(t, (*requests)[2].body, "<carrier>UPS</carrier>")
	require.Contains(t, (*requests)[2].body, "<tracking-number>Z9842W69871234</tracking-number>")
	require.Contains(t, (*requests)[3].body, "<refund-order")
	require.Contains(t, (*requests)[3].body, "<reason>returned</reason>")
	require.Contains(t, (*requests)[4].body, "<cancel-order")
	require.Contains(t, (*requests)[4].body, "<reason>out of stock</reason>")
	require.Contains(t, (*requests)[4].body, "<comment>restock expected in May</comment>")
}

func TestOrder_ShipWithoutTrackingOmitsElement(t *testing.T) {
	server, requests := newProcessor(t, http.StatusOK, requestReceived)

	err := newOrder(server).Ship(context.Background(), "", "")
	require.NoError(t, err)
	require.NotContains(t, (*requests)[0].body, "<tracking-data")
}

func TestOrder_RejectedCommand(t *testing.T) {
	server, requests := newProcessor(t, http.StatusOK, paymentDeclined)

	err := newOrder(server).Charge(context.Background(), "166.98")
	require.Error(t, err)

	var rejected *order.RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "PAYMENT_DECLINED", rejected.Code)
	require.Contains(t, rejected.Message, "declined by the issuer")

	require.Len(t, *requests, 1, "a rejected command must not be retried")
}

func TestOrder_RejectionEnvelopeWinsOverStatus(t *testing.T) {
	server, _ := newProcessor(t, http.StatusForbidden, paymentDeclined)

	err := newOrder(server).Cancel(context.Background(), "", "")
	var rejected *order.RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "PAYMENT_DECLINED", rejected.Code)
}

func TestOrder_UnexpectedResponseIsTransportError(t *testing.T) {
	server, _ := newProcessor(t, http.StatusBadGateway, "upstream exploded")

	err := newOrder(server).Authorize(context.Background())
	var transport *order.TransportError
	require.ErrorAs(t, err, &transport)
	require.Contains(t, transport.Error(), "502")
}

func TestOrder_ContextTimeoutIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(requestReceived))
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := newOrder(server).Charge(ctx, "1.00")
	var transport *order.TransportError
	require.ErrorAs(t, err, &transport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_EndpointSelection(t *testing.T) {
	sandbox := order.NewClient("1234567", "secret", "sandbox", "GBP")
	require.Equal(t, order.SandboxEndpoint+"1234567", sandbox.Endpoint())

	production := order.NewClient("1234567", "secret", "production", "GBP")
	require.Equal(t, order.ProductionEndpoint+"1234567", production.Endpoint())

	overridden := order.NewClient("1234567", "secret", "production", "GBP")
	overridden.SetEndpoint("http://127.0.0.1:9099/mock")
	require.True(t, strings.HasPrefix(overridden.Endpoint(), "http://127.0.0.1:9099"))
}
