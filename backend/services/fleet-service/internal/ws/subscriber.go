package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	readDeadline   = 60 * time.Second
)

// Subscriber is one dashboard websocket connection. The feed is one-way;
// the read pump exists only to observe pongs and closure.
type Subscriber struct {
	ws           *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Subscriber)
}

// NewSubscriber wraps an upgraded connection.
func NewSubscriber(conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Subscriber)) *Subscriber {
	return &Subscriber{
		ws:           conn,
		send:         make(chan []byte, sendBufferSize),
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// Start launches both pumps and blocks until the connection closes.
func (s *Subscriber) Start(ctx context.Context) {
	go s.writePump(ctx)
	s.readPump(ctx)
}

func (s *Subscriber) readPump(ctx context.Context) {
	defer s.cleanup()
	s.ws.SetReadLimit(512)
	s.ws.SetReadDeadline(time.Now().Add(readDeadline))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, _, err := s.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriber) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.send:
			if !ok {
				_ = s.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// Send enqueues a message, dropping it when the buffer is full.
func (s *Subscriber) Send(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("send on closed subscriber")
		}
	}()
	select {
	case s.send <- msg:
	default:
		s.logger.Warn("dropping status event, subscriber buffer full")
	}
}

func (s *Subscriber) write(messageType int, data []byte) error {
	s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(messageType, data)
}

func (s *Subscriber) cleanup() {
	close(s.send)
	_ = s.ws.Close()
	if s.onClose != nil {
		s.onClose(s)
	}
}
