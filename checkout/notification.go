package checkout

import "fmt"

// SchemaNamespace is the XML namespace of the checkout wire format.
const SchemaNamespace = "http://checkout.google.com/schema/2"

// Kind identifies a notification by its root element and doubles as the
// handler slot name exposed to the integrating application.
type Kind string

const (
	KindNewOrder            Kind = "new-order"
	KindRiskInformation     Kind = "risk-information"
	KindOrderStateChange    Kind = "order-state-change"
	KindChargeAmount        Kind = "charge-amount"
	KindChargebackAmount    Kind = "chargeback-amount"
	KindRefundAmount        Kind = "refund-amount"
	KindAuthorizationAmount Kind = "authorization-amount"
	KindUnknown             Kind = "unknown"
)

var kindByRoot = map[string]Kind{
	"new-order-notification":            KindNewOrder,
	"risk-information-notification":     KindRiskInformation,
	"order-state-change-notification":   KindOrderStateChange,
	"charge-amount-notification":        KindChargeAmount,
	"chargeback-amount-notification":    KindChargebackAmount,
	"refund-amount-notification":        KindRefundAmount,
	"authorization-amount-notification": KindAuthorizationAmount,
}

// KindOf maps a root element name to its notification kind. Roots the
// processor may add in the future come back as KindUnknown and follow the
// default-accept path.
func KindOf(rootName string) Kind {
	if kind, ok := kindByRoot[rootName]; ok {
		return kind
	}
	return KindUnknown
}

// Notification is one parsed inbound message: its kind, the raw root
// element name, the serial number the processor expects echoed in the
// acknowledgment, and the attribute tree of the payload.
type Notification struct {
	Kind   Kind
	Name   string
	Serial string
	Root   *Node
}

// Parse converts a raw notification body into a Notification or fails
// with an error wrapping ErrMalformed.
func Parse(data []byte) (*Notification, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body: %w", ErrMalformed)
	}
	root, rootName, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	serial, _ := root.Text("serial_number")
	return &Notification{
		Kind:   KindOf(rootName),
		Name:   rootName,
		Serial: serial,
		Root:   root,
	}, nil
}

// OrderNumber returns the google order number named by the notification.
// Most kinds carry it as a direct leaf child; some test and legacy shapes
// nest it under a value element.
func (n *Notification) OrderNumber() (string, error) {
	if number, err := n.Root.Text("google_order_number"); err == nil && number != "" {
		return number, nil
	}
	if number, err := n.Root.Text("google_order_number.value"); err == nil && number != "" {
		return number, nil
	}
	if number, err := n.Root.Text("order_summary.google_order_number"); err == nil && number != "" {
		return number, nil
	}
	return "", fmt.Errorf("google_order_number: %w", ErrNotFound)
}
