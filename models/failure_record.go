package models

import "time"

// FailureRecord keeps a handler failure that was acknowledged anyway, so the
// processor will not redeliver the notification. Kept for diagnostics.
type FailureRecord struct {
	RequestId string    `json:"request_id" bson:"request_id"`
	Kind      string    `json:"kind" bson:"kind"`
	Serial    string    `json:"serial" bson:"serial"`
	Error     string    `json:"error" bson:"error"`
	Time      time.Time `json:"time" bson:"time"`
}

func (f *FailureRecord) DataType() string {
	return "failureRecord"
}
