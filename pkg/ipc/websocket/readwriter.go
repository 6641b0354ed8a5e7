// Package websocket carries packets as binary websocket frames.
package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/banscii.go/pkg/ipc"
)

// ReadWriter implements ipc.PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a websocket endpoint.
func Dial(url, origin string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves calls on every accepted websocket connection.
func Handler(ctx context.Context, h ipc.Handler) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("websocket peer %s connected", conn.Request().RemoteAddr)
		err := ipc.NewServer(New(conn), h).Run(ctx)
		glog.Infof("websocket peer %s disconnected: %v", conn.Request().RemoteAddr, err)
	})
}
