package api

import (
	"encoding/json"
	"fmt"

	"gocheckout/internal"
)

type CallType string

const (
	ReadLog           CallType = "ReadLog"
	ReadNotifications CallType = "ReadNotifications"
	ReadFailures      CallType = "ReadFailures"
)

const readLimit = 100

type Call struct {
	CallType CallType
	Remote   string
}

type Handler struct {
	logger   internal.LogHandler
	database internal.Database
}

func (h *Handler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *Handler) SetDatabase(database internal.Database) {
	h.database = database
}

func NewApiHandler() *Handler {
	handler := Handler{}
	return &handler
}

func (h *Handler) HandleApiCall(ac *Call) []byte {
	h.logger.Debug(fmt.Sprintf("api call %s from remote %s", ac.CallType, ac.Remote))
	if h.database == nil {
		return nil
	}
	var data interface{}
	var err error
	switch ac.CallType {
	case ReadLog:
		data, err = h.database.ReadLog()
	case ReadNotifications:
		data, err = h.database.GetNotifications(readLimit)
	case ReadFailures:
		data, err = h.database.GetFailures(readLimit)
	default:
		h.logger.Warn(fmt.Sprintf("unknown api call %s", ac.CallType))
		return nil
	}
	if err != nil {
		h.logger.Error(fmt.Sprintf("api call %s", ac.CallType), err)
		return nil
	}
	byteData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("encoding api data failed", err)
		return nil
	}
	return byteData
}
