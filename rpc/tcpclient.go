package rpc

import (
	"errors"
	"fmt"
	"net/rpc"

	"github.com/BrugadaSyndrome/bslogger"
)

type TcpClient struct {
	client        *rpc.Client
	serverAddress string

	Logger bslogger.Logger
	Name   string
}

func NewTcpClient(serverAddress string, name string) *TcpClient {
	return &TcpClient{
		serverAddress: serverAddress,
		Name:          name,
		Logger:        bslogger.NewLogger(name, bslogger.Normal, nil),
	}
}

func (tc *TcpClient) Connect() error {
	if tc.client != nil {
		message := fmt.Sprintf("Already connected to server at address %s", tc.serverAddress)
		tc.Logger.Warning(message)
		return nil
	}

	var err error
	tc.client, err = rpc.Dial("tcp", tc.serverAddress)
	if err != nil {
		tc.Logger.Errorf("Connecting to server at address %s", tc.serverAddress)
		return err
	}
	tc.Logger.Infof("Connected to server at: %s", tc.serverAddress)
	return nil
}

func (tc *TcpClient) Call(method string, request interface{}, reply interface{}) error {
	return call(tc.client, tc.Logger, tc.serverAddress, method, request, reply)
}

func (tc *TcpClient) Disconnect() error {
	if tc.client == nil {
		message := fmt.Sprintf("Already disconnected from server at address %s", tc.serverAddress)
		tc.Logger.Warning(message)
		return errors.New(message)
	}

	err := tc.client.Close()
	tc.client = nil
	if err != nil {
		tc.Logger.Errorf("Disconnecting from server at serverAddress %s", tc.serverAddress)
		return err
	}
	tc.Logger.Infof("Disconnected from server at %s", tc.serverAddress)
	return nil
}

// ErrDone is returned by a server method to tell the caller there is nothing left to do. Over the
// wire it arrives as an rpc.ServerError with the same text.
var ErrDone = errors.New("all jobs handed out")

// IsDone reports whether err is ErrDone, locally or after crossing the wire.
func IsDone(err error) bool {
	if errors.Is(err, ErrDone) {
		return true
	}
	var serverErr rpc.ServerError
	return errors.As(err, &serverErr) && string(serverErr) == ErrDone.Error()
}

func call(client *rpc.Client, logger bslogger.Logger, serverAddress string, method string, request interface{}, reply interface{}) error {
	if client == nil {
		message := fmt.Sprintf("Not connected to server at address %s : method %s", serverAddress, method)
		logger.Error(message)
		return errors.New(message)
	}

	err := client.Call(method, request, reply)
	if err != nil {
		if !IsDone(err) {
			logger.Errorf("Calling server at address: %s, method: %s", serverAddress, method)
		}
		return err
	}
	logger.Debugf("Calling server [%s] %s", serverAddress, method)
	return nil
}
