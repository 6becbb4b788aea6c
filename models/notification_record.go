package models

import "time"

// NotificationRecord is one journal entry for a received notification.
type NotificationRecord struct {
	RequestId   string    `json:"request_id" bson:"request_id"`
	Kind        string    `json:"kind" bson:"kind"`
	Serial      string    `json:"serial" bson:"serial"`
	OrderNumber string    `json:"order_number" bson:"order_number"`
	Outcome     string    `json:"outcome" bson:"outcome"`
	Time        time.Time `json:"time" bson:"time"`
}

func (n *NotificationRecord) DataType() string {
	return "notificationRecord"
}
