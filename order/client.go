package order

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"gocheckout/internal"
	"gocheckout/metrics/counters"
)

const (
	// sandbox: https://sandbox.google.com/checkout/api/checkout/v2/request/Merchant/<id>
	// production: https://checkout.google.com/api/checkout/v2/request/Merchant/<id>
	SandboxEndpoint    = "https://sandbox.google.com/checkout/api/checkout/v2/request/Merchant/"
	ProductionEndpoint = "https://checkout.google.com/api/checkout/v2/request/Merchant/"

	RequestTimeout = 30 * time.Second
)

// Client issues financial commands against the order-processing endpoint.
// Its configuration is immutable after construction and safe for use from
// concurrent requests. The client never retries a command on its own:
// retrying charges or cancellations automatically risks duplicates, so
// retry policy belongs to the caller.
type Client struct {
	merchantId  string
	merchantKey string
	environment string
	currency    string
	endpoint    string
	client      *http.Client
	logger      internal.LogHandler
}

func NewClient(merchantId, merchantKey, environment, currency string) *Client {
	return &Client{
		merchantId:  merchantId,
		merchantKey: merchantKey,
		environment: environment,
		currency:    currency,
		client:      &http.Client{Timeout: RequestTimeout},
	}
}

func (c *Client) SetLogger(logger internal.LogHandler) {
	c.logger = logger
}

// SetEndpoint replaces the environment-selected endpoint, for tests and
// self-hosted processor mocks.
func (c *Client) SetEndpoint(url string) {
	c.endpoint = url
}

func (c *Client) Endpoint() string {
	if c.endpoint != "" {
		return c.endpoint
	}
	if c.environment == "production" {
		return ProductionEndpoint + c.merchantId
	}
	return SandboxEndpoint + c.merchantId
}

// Order returns an accessor bound to one order number. Issuing commands
// does not mutate the accessor, it may be reused within a request.
func (c *Client) Order(number string) *Order {
	return &Order{client: c, number: number}
}

func (c *Client) send(ctx context.Context, commandName string, command interface{}) error {
	err := c.doSend(ctx, command)
	counters.CountCommand(commandName, commandResult(err))
	if err != nil {
		if c.logger != nil {
			c.logger.Error(fmt.Sprintf("order command %s", commandName), err)
		}
		return err
	}
	if c.logger != nil {
		c.logger.Debug(fmt.Sprintf("order command %s accepted", commandName))
	}
	return nil
}

func (c *Client) doSend(ctx context.Context, command interface{}) error {
	body, err := xml.Marshal(command)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	payload := append([]byte(xml.Header), body...)

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.merchantId, c.merchantKey)
	req.Header.Set("Content-Type", "application/xml; charset=UTF-8")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}
	return parseResponse(resp.StatusCode, respBody)
}

func commandResult(err error) string {
	switch err.(type) {
	case nil:
		return "ok"
	case *RejectedError:
		return "rejected"
	default:
		return "transport-error"
	}
}
