package rpc

import (
	"fmt"
	"strings"

	"FractalAnimator/misc"
)

const (
	Tcp  = "tcp"
	Http = "http"
)

// Server exposes the exported methods of one object over net/rpc.
type Server interface {
	Run() error
	Stop() error
	Addr() string
}

// Client calls methods on a Server.
type Client interface {
	Connect() error
	Call(method string, request interface{}, reply interface{}) error
	Disconnect() error
}

func ParseTransport(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Tcp:
		return Tcp, nil
	case Http:
		return Http, nil
	}
	return "", misc.NewConfigError("transport", "unknown transport %q", name)
}

func NewServer(transport string, object interface{}, address string, name string) (Server, error) {
	switch transport {
	case Tcp:
		return NewTcpServer(object, address, name), nil
	case Http:
		return NewHttpServer(object, address, name), nil
	}
	return nil, fmt.Errorf("unknown transport %q", transport)
}

func NewClient(transport string, serverAddress string, name string) (Client, error) {
	switch transport {
	case Tcp:
		return NewTcpClient(serverAddress, name), nil
	case Http:
		return NewHttpClient(serverAddress, name), nil
	}
	return nil, fmt.Errorf("unknown transport %q", transport)
}
