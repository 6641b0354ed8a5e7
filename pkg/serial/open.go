package serial

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"

	"github.com/golang/glog"
	"golang.org/x/term"
)

// Open opens the line behind a serial URL:
//
//	stdio             the controlling terminal, switched to raw mode
//	tcp://host:port   listen and accept one client
//	unix:///path      listen and accept one client
func Open(serialURL string) (io.ReadWriteCloser, error) {
	if serialURL == "" || serialURL == "stdio" {
		return OpenStdio()
	}
	u, err := url.Parse(serialURL)
	if err != nil {
		return nil, fmt.Errorf("invalid serial URL: %w", err)
	}
	var network, addr string
	switch u.Scheme {
	case "tcp":
		network, addr = "tcp", u.Host
	case "unix":
		network, addr = "unix", u.Path
	default:
		return nil, fmt.Errorf("unknown serial URL scheme: %q", u.Scheme)
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("serial: waiting for a terminal on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	glog.Infof("serial: terminal %s attached", conn.RemoteAddr())
	return conn, nil
}

type stdio struct {
	in    *os.File
	out   io.Writer
	state *term.State
}

// OpenStdio uses stdin/stdout as the line. When stdin is a terminal it is
// switched to raw mode so every byte is delivered unechoed, and newlines
// written out are expanded to CR LF.
func OpenStdio() (io.ReadWriteCloser, error) {
	s := &stdio{in: os.Stdin, out: os.Stdout}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		s.state, s.out = state, &crlfWriter{w: os.Stdout}
	}
	return s, nil
}

// Read treats Ctrl-C as the end of the line in raw mode, as the terminal
// no longer turns it into a signal.
func (s *stdio) Read(p []byte) (int, error) {
	n, err := s.in.Read(p)
	if s.state != nil {
		if i := bytes.IndexByte(p[:n], 0x03); i >= 0 {
			return i, io.EOF
		}
	}
	return n, err
}

func (s *stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *stdio) Close() error {
	if s.state != nil {
		return term.Restore(int(s.in.Fd()), s.state)
	}
	return nil
}

type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	for n, b := range p {
		var err error
		if b == '\n' {
			_, err = c.w.Write([]byte{'\r', '\n'})
		} else {
			_, err = c.w.Write([]byte{b})
		}
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}
