package server

import (
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"gocheckout/api"
	"gocheckout/checkout"
	"gocheckout/internal"
	"gocheckout/internal/config"
	"gocheckout/utility"
)

const (
	notificationsEndpoint = "/notifications"
	monitorEndpoint       = "/monitor"
	logEndpoint           = "/log"
	journalEndpoint       = "/journal"
	failuresEndpoint      = "/failures"
)

// Server is the HTTP boundary: it authenticates the processor, feeds
// notification bodies to the dispatcher, and maps the dispatch outcome
// onto the response the processor's redelivery logic understands.
type Server struct {
	conf           *config.Config
	httpServer     *http.Server
	logger         internal.LogHandler
	dispatcher     *checkout.Dispatcher
	apiHandler     func(ac *api.Call) []byte
	monitorHandler http.HandlerFunc
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := Server{
		conf:   conf,
		logger: logger,
	}
	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(notificationsEndpoint, s.handleNotification)
	router.GET(monitorEndpoint, s.handleMonitor)
	router.GET(logEndpoint, s.handleApi(api.ReadLog))
	router.GET(journalEndpoint, s.handleApi(api.ReadNotifications))
	router.GET(failuresEndpoint, s.handleApi(api.ReadFailures))
}

func (s *Server) SetDispatcher(dispatcher *checkout.Dispatcher) {
	s.dispatcher = dispatcher
}

func (s *Server) SetApiHandler(handler func(ac *api.Call) []byte) {
	s.apiHandler = handler
}

func (s *Server) SetMonitorHandler(handler http.HandlerFunc) {
	s.monitorHandler = handler
}

// handleNotification processes one inbound notification. The processor
// redelivers on any non-2xx answer, so only acknowledged outcomes get 200.
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	merchantId, merchantKey, ok := r.BasicAuth()
	if !ok {
		s.logger.Warn(fmt.Sprintf("notification from %s without authorization", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if merchantId != s.conf.Merchant.Id || merchantKey != s.conf.Merchant.Key {
		s.logger.Warn(fmt.Sprintf("notification from %s with unexpected merchant id or key", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("reading notification body", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		s.logger.Warn(fmt.Sprintf("empty notification body from %s", r.RemoteAddr))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.logger.RawDataEvent("IN", string(body))

	result, err := s.dispatcher.Dispatch(r.Context(), body)
	if err != nil {
		// not well-formed; it will never parse on redelivery, reject
		// without acknowledgment
		s.logger.Error("rejected notification", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if result.Outcome == checkout.Failed {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ack := result.Acknowledgment()
	s.logger.RawDataEvent("OUT", string(ack))
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if _, err = w.Write(ack); err != nil {
		s.logger.Error("writing acknowledgment", err)
	}
}

func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.monitorHandler == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.monitorHandler(w, r)
}

func (s *Server) handleApi(callType api.CallType) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if s.apiHandler == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		data := s.apiHandler(&api.Call{CallType: callType, Remote: r.RemoteAddr})
		if data == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if _, err := w.Write(data); err != nil {
			s.logger.Error("api send response", err)
		}
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return utility.Err("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	return err
}
