package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
)

type client struct {
	conn *websocket.Conn
	uuid string
	mu   *sync.Mutex
}

func newClient(conn *websocket.Conn, uuid string) client {
	return client{
		conn: conn,
		uuid: uuid,
		mu:   &sync.Mutex{},
	}
}

func (c client) WriteMessage(msg domain.Message) error {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		return errors.WithMessage(err, "marshal message")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.WithMessage(err, "websocket conn write message")
	}
	return nil
}

// ReadMessage reports a close frame from the peer as domain.ErrConnectionClosed.
func (c client) ReadMessage() (domain.Message, error) {
	_, data, err := c.conn.ReadMessage()
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		return domain.Message{}, errors.WithMessagef(domain.ErrConnectionClosed, "code %d", closeErr.Code)
	case err != nil:
		return domain.Message{}, errors.WithMessage(err, "websocket conn read message")
	}
	var msg domain.Message
	if err := jsoniter.Unmarshal(data, &msg); err != nil {
		return domain.Message{}, errors.WithMessage(err, "unmarshal message")
	}
	return msg, nil
}

func (c client) Uuid() string {
	return c.uuid
}

func (c client) Close() {
	_ = c.conn.Close()
}
