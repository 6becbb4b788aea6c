package order

import (
	"context"
	"encoding/xml"
)

const schemaNamespace = "http://checkout.google.com/schema/2"

// Order is a client handle bound to one order number.
type Order struct {
	client *Client
	number string
}

func (o *Order) Number() string {
	return o.number
}

type commandAmount struct {
	Currency string `xml:"currency,attr"`
	Value    string `xml:",chardata"`
}

type trackingData struct {
	Carrier        string `xml:"carrier"`
	TrackingNumber string `xml:"tracking-number"`
}

type authorizeOrder struct {
	XMLName     xml.Name `xml:"authorize-order"`
	Xmlns       string   `xml:"xmlns,attr"`
	OrderNumber string   `xml:"google-order-number,attr"`
}

type chargeOrder struct {
	XMLName     xml.Name       `xml:"charge-order"`
	Xmlns       string         `xml:"xmlns,attr"`
	OrderNumber string         `xml:"google-order-number,attr"`
	Amount      *commandAmount `xml:"amount,omitempty"`
}

type chargeAndShipOrder struct {
	XMLName     xml.Name       `xml:"charge-and-ship-order"`
	Xmlns       string         `xml:"xmlns,attr"`
	OrderNumber string         `xml:"google-order-number,attr"`
	Amount      *commandAmount `xml:"amount,omitempty"`
}

type deliverOrder struct {
	XMLName     xml.Name      `xml:"deliver-order"`
	Xmlns       string        `xml:"xmlns,attr"`
	OrderNumber string        `xml:"google-order-number,attr"`
	Tracking    *trackingData `xml:"tracking-data,omitempty"`
}

type refundOrder struct {
	XMLName     xml.Name       `xml:"refund-order"`
	Xmlns       string         `xml:"xmlns,attr"`
	OrderNumber string         `xml:"google-order-number,attr"`
	Reason      string         `xml:"reason"`
	Amount      *commandAmount `xml:"amount,omitempty"`
}

type cancelOrder struct {
	XMLName     xml.Name `xml:"cancel-order"`
	Xmlns       string   `xml:"xmlns,attr"`
	OrderNumber string   `xml:"google-order-number,attr"`
	Reason      string   `xml:"reason,omitempty"`
	Comment     string   `xml:"comment,omitempty"`
}

func (o *Order) amount(value string) *commandAmount {
	if value == "" {
		return nil
	}
	return &commandAmount{Currency: o.client.currency, Value: value}
}

// Authorize reauthorizes the buyer's card for the full order amount.
func (o *Order) Authorize(ctx context.Context) error {
	return o.client.send(ctx, "authorize-order", authorizeOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
	})
}

// Charge charges the given amount, or the full chargeable amount when
// amount is empty. The client's default currency applies.
func (o *Order) Charge(ctx context.Context, amount string) error {
	return o.client.send(ctx, "charge-order", chargeOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
		Amount:      o.amount(amount),
	})
}

// ChargeAndShip charges and marks the order delivered in one command.
func (o *Order) ChargeAndShip(ctx context.Context, amount string) error {
	return o.client.send(ctx, "charge-and-ship-order", chargeAndShipOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
		Amount:      o.amount(amount),
	})
}

// Ship marks the order delivered. Carrier and tracking number are
// optional and only included together.
func (o *Order) Ship(ctx context.Context, carrier, trackingNumber string) error {
	command := deliverOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
	}
	if carrier != "" || trackingNumber != "" {
		command.Tracking = &trackingData{Carrier: carrier, TrackingNumber: trackingNumber}
	}
	return o.client.send(ctx, "deliver-order", command)
}

// Refund refunds the given amount, or the full charged amount when amount
// is empty. The processor requires a reason.
func (o *Order) Refund(ctx context.Context, reason, amount string) error {
	return o.client.send(ctx, "refund-order", refundOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
		Reason:      reason,
		Amount:      o.amount(amount),
	})
}

// Cancel cancels the order, with an optional reason and comment.
func (o *Order) Cancel(ctx context.Context, reason, comment string) error {
	return o.client.send(ctx, "cancel-order", cancelOrder{
		Xmlns:       schemaNamespace,
		OrderNumber: o.number,
		Reason:      reason,
		Comment:     comment,
	})
}
