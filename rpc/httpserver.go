package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
)

type HttpServer struct {
	address  string
	listener net.Listener
	mux      *http.ServeMux
	object   interface{}
	server   *http.Server
	stopOnce sync.Once

	Logger bslogger.Logger
	Name   string
	WG     *sync.WaitGroup
}

func NewHttpServer(object interface{}, address string, name string) *HttpServer {
	return &HttpServer{
		address: address,
		mux:     http.NewServeMux(),
		object:  object,
		Logger:  bslogger.NewLogger(name, bslogger.Normal, nil),
		Name:    name,
		WG:      &sync.WaitGroup{},
	}
}

func (hs *HttpServer) Run() error {
	handler := rpc.NewServer()
	err := handler.Register(hs.object)
	if err != nil {
		hs.Logger.Error("Registering object")
		return err
	}

	// rpc.Server answers the CONNECT handshake itself, so it mounts on a private mux
	hs.mux.Handle(rpc.DefaultRPCPath, handler)

	hs.listener, err = net.Listen("tcp", hs.address)
	if err != nil {
		hs.Logger.Errorf("Listening at address %s", hs.address)
		return err
	}
	hs.address = hs.listener.Addr().String()

	hs.server = &http.Server{Addr: hs.address, Handler: hs.mux, ReadHeaderTimeout: 5 * time.Second}
	hs.WG.Add(1)
	go func() {
		defer hs.WG.Done()
		if err := hs.server.Serve(hs.listener); !errors.Is(err, http.ErrServerClosed) {
			hs.Logger.Errorf("Error serving at address %s - %s", hs.address, err)
		}
	}()

	hs.Logger.Infof("Running server at address %s", hs.address)
	return nil
}

func (hs *HttpServer) Addr() string {
	return hs.address
}

func (hs *HttpServer) Stop() error {
	var err error
	hs.stopOnce.Do(func() {
		hs.Logger.Infof("Shutting down server at address %s", hs.address)
		// hijacked rpc connections are not tracked by Shutdown, so this returns once the listener is closed
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err = hs.server.Shutdown(ctx); err != nil {
			hs.Logger.Errorf("Shutting down server at address %s", hs.address)
		}
	})
	hs.WG.Wait()
	return err
}
