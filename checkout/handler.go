package checkout

import (
	"context"
	"errors"
	"fmt"

	"gocheckout/internal"
	"gocheckout/order"
)

// ErrIgnoreNotification tells the dispatcher to acknowledge the
// notification so the processor will not resend it, while still recording
// the failure for diagnostics. Return it wrapped from a handler:
//
//	return checkout.Ignore("order %s already processed", number)
var ErrIgnoreNotification = errors.New("notification ignored")

// Ignore builds an error wrapping ErrIgnoreNotification.
func Ignore(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrIgnoreNotification)
}

// HandlerFunc processes one notification. A nil return acknowledges, an
// error wrapping ErrIgnoreNotification acknowledges but records the
// failure, any other error withholds the acknowledgment so the processor
// redelivers.
type HandlerFunc func(ctx *Context) error

// Handlers is the capability table the integrating application fills in.
// Empty slots fall back to Default, and a nil Default to a built-in no-op
// that logs the received kind and acknowledges.
//
// MerchantDetails supplies the merchant credentials for outbound order
// commands. It is consulted lazily, only when a handler first asks for an
// order accessor, so purely passive notification handling works without
// credentials.
type Handlers struct {
	MerchantDetails func() (merchantId string, merchantKey string, err error)

	NewOrder            HandlerFunc
	RiskInformation     HandlerFunc
	OrderStateChange    HandlerFunc
	ChargeAmount        HandlerFunc
	ChargebackAmount    HandlerFunc
	RefundAmount        HandlerFunc
	AuthorizationAmount HandlerFunc
	Default             HandlerFunc
}

func (h *Handlers) slot(kind Kind) HandlerFunc {
	var selected HandlerFunc
	switch kind {
	case KindNewOrder:
		selected = h.NewOrder
	case KindRiskInformation:
		selected = h.RiskInformation
	case KindOrderStateChange:
		selected = h.OrderStateChange
	case KindChargeAmount:
		selected = h.ChargeAmount
	case KindChargebackAmount:
		selected = h.ChargebackAmount
	case KindRefundAmount:
		selected = h.RefundAmount
	case KindAuthorizationAmount:
		selected = h.AuthorizationAmount
	}
	if selected == nil {
		selected = h.Default
	}
	return selected
}

// Context is the per-request view a handler works with. It is built for a
// single dispatch call and must not be retained after the handler returns.
type Context struct {
	RequestId    string
	Notification *Notification

	ctx      context.Context
	logger   internal.LogHandler
	merchant func() (string, string, error)
	orders   func(merchantId, merchantKey string) *order.Client
	order    *order.Order
}

// Context returns the request-scoped context for outbound calls.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Log records a feature event correlated with the notification serial.
func (c *Context) Log(text string) {
	c.logger.FeatureEvent(string(c.Notification.Kind), c.Notification.Serial, text)
}

// Order returns an accessor for the order named by the current
// notification. The merchant credentials are resolved on first use.
func (c *Context) Order() (*order.Order, error) {
	if c.order != nil {
		return c.order, nil
	}
	number, err := c.Notification.OrderNumber()
	if err != nil {
		return nil, err
	}
	accessor, err := c.OrderNumbered(number)
	if err != nil {
		return nil, err
	}
	c.order = accessor
	return c.order, nil
}

// OrderNumbered returns an accessor bound to an explicit order number,
// for handlers that act on an order other than the notification's own.
func (c *Context) OrderNumbered(number string) (*order.Order, error) {
	if c.merchant == nil {
		return nil, errors.New("merchant details are not configured")
	}
	merchantId, merchantKey, err := c.merchant()
	if err != nil {
		return nil, fmt.Errorf("merchant details: %w", err)
	}
	return c.orders(merchantId, merchantKey).Order(number), nil
}
