package server

import (
	"fmt"
	"log"
	"time"

	"gocheckout/api"
	"gocheckout/checkout"
	"gocheckout/internal"
	"gocheckout/internal/config"
	"gocheckout/metrics"
	"gocheckout/monitor"
	"gocheckout/telegram"
	"gocheckout/utility"
)

// CheckoutSystem assembles the whole service: configuration, journal
// database, logger, event listeners, dispatcher and the HTTP boundary.
type CheckoutSystem struct {
	conf       *config.Config
	server     *Server
	logger     internal.LogHandler
	dispatcher *checkout.Dispatcher
}

func NewCheckoutSystem(handlers *checkout.Handlers) (*CheckoutSystem, error) {
	conf, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration failed: %s", err)
	}

	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone initialization failed: %s", err)
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		database, err = internal.NewMongoClient(conf)
		if err != nil {
			return nil, fmt.Errorf("mongodb setup failed: %s", err)
		}
		if database != nil {
			log.Println("mongodb is configured and enabled")
		}
	} else {
		log.Println("database is disabled")
	}

	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)

	// passive handling works without credentials; a merchant section in
	// the config backs the default capability for outbound commands
	if handlers.MerchantDetails == nil {
		handlers.MerchantDetails = func() (string, string, error) {
			if conf.Merchant.Id == "" || conf.Merchant.Key == "" {
				return "", "", utility.Err("merchant credentials are not configured")
			}
			return conf.Merchant.Id, conf.Merchant.Key, nil
		}
	}

	dispatcher := checkout.NewDispatcher(handlers)
	dispatcher.SetLogger(logService)
	dispatcher.SetDatabase(database)
	dispatcher.SetEnvironment(conf.Merchant.Environment, conf.Merchant.Currency)

	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey)
		if err != nil {
			return nil, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetDatabase(database)
		telegramBot.Start()
		dispatcher.AddEventListener(telegramBot)
		log.Println("telegram bot is configured and enabled")
	}

	feed := monitor.NewFeed(logService)
	dispatcher.AddEventListener(feed)

	apiHandler := api.NewApiHandler()
	apiHandler.SetLogger(logService)
	apiHandler.SetDatabase(database)

	httpServer := NewServer(conf, logService)
	httpServer.SetDispatcher(dispatcher)
	httpServer.SetMonitorHandler(feed.Handle)
	httpServer.SetApiHandler(apiHandler.HandleApiCall)

	cs := CheckoutSystem{
		conf:       conf,
		server:     httpServer,
		logger:     logService,
		dispatcher: dispatcher,
	}
	return &cs, nil
}

// Dispatcher exposes the dispatcher for integrations embedding the
// system behind their own boundary.
func (cs *CheckoutSystem) Dispatcher() *checkout.Dispatcher {
	return cs.dispatcher
}

func (cs *CheckoutSystem) Start() {
	go func() {
		if err := metrics.Listen(cs.conf); err != nil {
			cs.logger.Error("metrics server failed", err)
		}
	}()

	if err := cs.server.Start(); err != nil {
		cs.logger.Error("server failed", err)
	}
}
