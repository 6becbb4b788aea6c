package internal

import (
	"context"
	"fmt"
	"gocheckout/internal/config"
	"gocheckout/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log"
)

const (
	collectionLog           = "sys_log"
	collectionNotifications = "notifications"
	collectionFailures      = "failures"
	collectionSubscriptions = "subscriptions"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	err := connection.Disconnect(m.ctx)
	if err != nil {
		log.Println("mongodb disconnect error;", err)
	}
}

func (m *MongoDB) WriteLogMessage(data Data) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(m.ctx, data)
	return err
}

func (m *MongoDB) ReadLog() (interface{}, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var logMessages []FeatureLogMessage
	collection := connection.Database(m.database).Collection(collectionLog)
	filter := bson.D{}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(1000)
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &logMessages); err != nil {
		return nil, err
	}
	return logMessages, nil
}

func (m *MongoDB) WriteNotification(record *models.NotificationRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionNotifications)
	_, err = collection.InsertOne(m.ctx, record)
	return err
}

func (m *MongoDB) WriteFailure(record *models.FailureRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionFailures)
	_, err = collection.InsertOne(m.ctx, record)
	return err
}

func (m *MongoDB) GetNotifications(limit int64) ([]models.NotificationRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var records []models.NotificationRecord
	collection := connection.Database(m.database).Collection(collectionNotifications)
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(limit)
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *MongoDB) GetFailures(limit int64) ([]models.FailureRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var records []models.FailureRecord
	collection := connection.Database(m.database).Collection(collectionFailures)
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(limit)
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *MongoDB) GetSubscriptions() ([]models.UserSubscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var subscriptions []models.UserSubscription
	if err = cursor.All(m.ctx, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (m *MongoDB) GetSubscription(id int) (*models.UserSubscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "user_id", Value: id}}
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	var subscription models.UserSubscription
	err = collection.FindOne(m.ctx, filter).Decode(&subscription)
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (m *MongoDB) AddSubscription(subscription *models.UserSubscription) error {
	existedSubscription, _ := m.GetSubscription(subscription.UserID)
	if existedSubscription != nil {
		return fmt.Errorf("user is already subscribed")
	}
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	_, err = collection.InsertOne(m.ctx, subscription)
	return err
}

func (m *MongoDB) DeleteSubscription(subscription *models.UserSubscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "user_id", Value: subscription.UserID}}
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}
