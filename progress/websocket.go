package progress

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const subscriberBuffer = 64

// WebsocketReporter broadcasts events as JSON to every connected websocket client. A client that
// falls more than subscriberBuffer events behind misses events instead of slowing the run down.
type WebsocketReporter struct {
	mutex       sync.Mutex
	subscribers map[chan Event]struct{}
	last        *Event
	closed      bool
	done        chan struct{}

	Logger bslogger.Logger
}

func NewWebsocketReporter(logger bslogger.Logger) *WebsocketReporter {
	return &WebsocketReporter{
		subscribers: make(map[chan Event]struct{}),
		done:        make(chan struct{}),
		Logger:      logger,
	}
}

func (wr *WebsocketReporter) Report(e Event) {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()
	wr.last = &e
	for ch := range wr.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers is the number of connected clients.
func (wr *WebsocketReporter) Subscribers() int {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()
	return len(wr.subscribers)
}

// Close disconnects every client and refuses new ones.
func (wr *WebsocketReporter) Close() {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()
	if !wr.closed {
		wr.closed = true
		close(wr.done)
	}
}

func (wr *WebsocketReporter) subscribe() (chan Event, bool) {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()
	if wr.closed {
		return nil, false
	}
	ch := make(chan Event, subscriberBuffer)
	if wr.last != nil {
		ch <- *wr.last
	}
	wr.subscribers[ch] = struct{}{}
	return ch, true
}

func (wr *WebsocketReporter) unsubscribe(ch chan Event) {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()
	delete(wr.subscribers, ch)
}

func (wr *WebsocketReporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		wr.Logger.Warningf("Unable to accept progress client: %s", err)
		return
	}
	defer c.CloseNow()

	ch, ok := wr.subscribe()
	if !ok {
		c.Close(websocket.StatusGoingAway, "run finished")
		return
	}
	defer wr.unsubscribe(ch)
	wr.Logger.Infof("Progress client connected from %s", r.RemoteAddr)

	// Clients only listen; CloseRead handles their control frames and cancels ctx when they leave.
	ctx := c.CloseRead(r.Context())
	for {
		select {
		case e := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, c, e)
			cancel()
			if err != nil {
				wr.Logger.Debugf("Progress client %s dropped: %s", r.RemoteAddr, err)
				return
			}
		case <-wr.done:
			c.Close(websocket.StatusNormalClosure, "run finished")
			return
		case <-ctx.Done():
			return
		}
	}
}

// ListenAndServe serves the progress feed at /progress on address until ctx is done.
func (wr *WebsocketReporter) ListenAndServe(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/progress", wr)
	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		wr.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	wr.Logger.Infof("Serving progress at ws://%s/progress", address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
