package checkout

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocheckout/internal"
	"gocheckout/metrics/counters"
	"gocheckout/models"
	"gocheckout/order"
)

// Outcome is the three-valued result of one dispatch call. The boundary
// layer maps it onto the HTTP response: both acknowledged outcomes answer
// 200 with the acknowledgment envelope, Failed answers non-2xx so the
// processor redelivers.
type Outcome string

const (
	Acknowledged          Outcome = "acknowledged"
	AcknowledgedWithError Outcome = "acknowledged-with-error"
	Failed                Outcome = "failed"
)

// Result describes how one notification was handled.
type Result struct {
	Outcome     Outcome
	Kind        Kind
	Serial      string
	RequestId   string
	OrderNumber string
	Err         error
}

type acknowledgment struct {
	XMLName xml.Name `xml:"notification-acknowledgment"`
	Xmlns   string   `xml:"xmlns,attr"`
	Serial  string   `xml:"serial-number,attr"`
}

// Acknowledgment renders the envelope telling the processor the
// notification was delivered and must not be resent.
func (r *Result) Acknowledgment() []byte {
	body, _ := xml.Marshal(acknowledgment{
		Xmlns:  SchemaNamespace,
		Serial: r.Serial,
	})
	return append([]byte(xml.Header), body...)
}

// Dispatcher parses inbound notification bodies and routes them to the
// handler table. It holds no per-request state; one Dispatcher serves all
// concurrent requests.
type Dispatcher struct {
	handlers      *Handlers
	logger        internal.LogHandler
	database      internal.Database
	listeners     []internal.EventHandler
	environment   string
	currency      string
	orderEndpoint string
}

func NewDispatcher(handlers *Handlers) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
	}
}

func (d *Dispatcher) SetLogger(logger internal.LogHandler) {
	d.logger = logger
}

func (d *Dispatcher) SetDatabase(database internal.Database) {
	d.database = database
}

func (d *Dispatcher) AddEventListener(listener internal.EventHandler) {
	d.listeners = append(d.listeners, listener)
}

// SetEnvironment selects the order-processing endpoint (sandbox or
// production) and the default currency for handler-issued commands.
func (d *Dispatcher) SetEnvironment(environment, currency string) {
	d.environment = environment
	d.currency = currency
}

// SetOrderEndpoint overrides the environment endpoint for order commands.
func (d *Dispatcher) SetOrderEndpoint(url string) {
	d.orderEndpoint = url
}

// Dispatch runs one notification through parse, handler selection and
// outcome mapping. A non-nil error means the body was not well-formed and
// was never dispatched; it must not be acknowledged.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (*Result, error) {
	notification, err := Parse(body)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Kind:      notification.Kind,
		Serial:    notification.Serial,
		RequestId: uuid.New().String(),
	}
	if number, err := notification.OrderNumber(); err == nil {
		result.OrderNumber = number
	}
	if notification.Serial == "" {
		d.logger.Warn(fmt.Sprintf("%s notification carries no serial-number", notification.Name))
	}
	counters.CountNotification(string(notification.Kind))

	handler := d.handlers.slot(notification.Kind)
	var handlerErr error
	if handler == nil {
		d.logger.FeatureEvent(string(notification.Kind), notification.Serial, "received but ignored")
	} else {
		handlerErr = handler(d.newContext(ctx, notification, result.RequestId))
	}

	switch {
	case handlerErr == nil:
		result.Outcome = Acknowledged
	case errors.Is(handlerErr, ErrIgnoreNotification):
		result.Outcome = AcknowledgedWithError
		result.Err = handlerErr
		d.recordFailure(notification, result, handlerErr)
	default:
		result.Outcome = Failed
		result.Err = handlerErr
		d.logger.Error(fmt.Sprintf("%s dispatch failed, awaiting redelivery", notification.Name), handlerErr)
	}
	counters.CountOutcome(string(notification.Kind), string(result.Outcome))

	d.journal(result)
	d.notify(notification, result, handlerErr)
	return result, nil
}

func (d *Dispatcher) newContext(ctx context.Context, notification *Notification, requestId string) *Context {
	return &Context{
		RequestId:    requestId,
		Notification: notification,
		ctx:          ctx,
		logger:       d.logger,
		merchant:     d.handlers.MerchantDetails,
		orders: func(merchantId, merchantKey string) *order.Client {
			client := order.NewClient(merchantId, merchantKey, d.environment, d.currency)
			client.SetLogger(d.logger)
			if d.orderEndpoint != "" {
				client.SetEndpoint(d.orderEndpoint)
			}
			return client
		},
	}
}

func (d *Dispatcher) recordFailure(notification *Notification, result *Result, handlerErr error) {
	d.logger.FeatureEvent(string(notification.Kind), notification.Serial,
		fmt.Sprintf("acknowledged with recorded failure: %s", handlerErr))
	if d.database == nil {
		return
	}
	record := &models.FailureRecord{
		RequestId: result.RequestId,
		Kind:      string(notification.Kind),
		Serial:    notification.Serial,
		Error:     handlerErr.Error(),
		Time:      time.Now().UTC(),
	}
	if err := d.database.WriteFailure(record); err != nil {
		d.logger.Error("write failure record", err)
	}
}

func (d *Dispatcher) journal(result *Result) {
	if d.database == nil {
		return
	}
	record := &models.NotificationRecord{
		RequestId:   result.RequestId,
		Kind:        string(result.Kind),
		Serial:      result.Serial,
		OrderNumber: result.OrderNumber,
		Outcome:     string(result.Outcome),
		Time:        time.Now().UTC(),
	}
	if err := d.database.WriteNotification(record); err != nil {
		d.logger.Error("write notification record", err)
	}
}

func (d *Dispatcher) notify(notification *Notification, result *Result, handlerErr error) {
	event := &internal.EventMessage{
		RequestId:   result.RequestId,
		Kind:        string(result.Kind),
		Serial:      result.Serial,
		OrderNumber: result.OrderNumber,
		Time:        time.Now().UTC(),
	}
	for _, listener := range d.listeners {
		received := *event
		received.Type = "notification"
		received.Info = string(result.Outcome)
		listener.OnNotification(&received)
	}
	if result.Outcome == AcknowledgedWithError {
		for _, listener := range d.listeners {
			failure := *event
			failure.Type = "recorded-failure"
			failure.Info = handlerErr.Error()
			listener.OnRecordedFailure(&failure)
		}
	}
	var rejected *order.RejectedError
	if handlerErr != nil && errors.As(handlerErr, &rejected) {
		for _, listener := range d.listeners {
			rejection := *event
			rejection.Type = "command-rejected"
			rejection.Info = rejected.Error()
			listener.OnCommandRejected(&rejection)
		}
	}
}
