package internal

import "time"

type EventHandler interface {
	OnNotification(event *EventMessage)
	OnRecordedFailure(event *EventMessage)
	OnCommandRejected(event *EventMessage)
}

type EventMessage struct {
	Type        string    `json:"type" bson:"type"`
	RequestId   string    `json:"request_id" bson:"request_id"`
	Kind        string    `json:"kind" bson:"kind"`
	Serial      string    `json:"serial" bson:"serial"`
	OrderNumber string    `json:"order_number" bson:"order_number"`
	Time        time.Time `json:"time" bson:"time"`
	Info        string    `json:"info" bson:"info"`
}
