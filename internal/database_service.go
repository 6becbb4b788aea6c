package internal

import "gocheckout/models"

type Database interface {
	WriteLogMessage(data Data) error
	ReadLog() (interface{}, error)
	WriteNotification(record *models.NotificationRecord) error
	WriteFailure(record *models.FailureRecord) error
	GetNotifications(limit int64) ([]models.NotificationRecord, error)
	GetFailures(limit int64) ([]models.FailureRecord, error)
	GetSubscriptions() ([]models.UserSubscription, error)
	AddSubscription(subscription *models.UserSubscription) error
	DeleteSubscription(subscription *models.UserSubscription) error
}

type Data interface {
	DataType() string
}
