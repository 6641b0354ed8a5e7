package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/assistant"
	fx "github.com/robotalks/banscii.go/pkg/framework"
	"github.com/robotalks/banscii.go/pkg/ipc"
	"github.com/robotalks/banscii.go/pkg/ipc/mqtt"
	"github.com/robotalks/banscii.go/pkg/ipc/stream"
	"github.com/robotalks/banscii.go/pkg/ipc/websocket"
)

// TalentName names the talent on brokers.
const TalentName = "talent"

// Talent is the assistant side of the talent channel.
type Talent struct {
	Caller  ipc.Caller
	Regions *Regions
}

// Client creates the assistant client on the talent.
func (t *Talent) Client() *assistant.Client {
	return assistant.NewClient(t.Regions.Out.ReadWrite(), t.Regions.In.ReadOnly(), t.Caller)
}

// AddToLoop implements LoopAdder. Transports needing a background runner
// are run by the loop.
func (t *Talent) AddToLoop(l *fx.Loop) {
	if r, ok := t.Caller.(fx.Runnable); ok {
		l.AddRunnable(fx.NamedRun(TalentName, r))
	}
}

// Close implements io.Closer.
func (t *Talent) Close() error {
	if closer, ok := t.Caller.(io.Closer); ok {
		closer.Close()
	}
	return t.Regions.Close()
}

// ConnectTalent sets up the regions and the caller on the talent channel.
func (c *Config) ConnectTalent() (*Talent, error) {
	regions, err := c.NewRegions(false)
	if err != nil {
		return nil, err
	}
	caller, err := c.dialTalent(regions)
	if err != nil {
		regions.Close()
		return nil, err
	}
	return &Talent{Caller: caller, Regions: regions}, nil
}

// MustConnectTalent connects the talent and fails on error.
func (c *Config) MustConnectTalent() *Talent {
	t, err := c.ConnectTalent()
	if err != nil {
		glog.Fatalf("connect talent %q failed: %v", c.TalentURL, err)
	}
	return t
}

func (c *Config) dialTalent(regions *Regions) (ipc.Caller, error) {
	if c.IsLocal() {
		a, err := c.NewArtist(regions)
		if err != nil {
			return nil, err
		}
		return ipc.NewLocal(assistant.Talent, a), nil
	}
	u, err := c.talentURL()
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "unix", "tcp":
		network, addr := socketAddr(u)
		conn, err := net.Dial(network, addr)
		if err != nil {
			return nil, err
		}
		return ipc.NewConn(assistant.Talent, stream.New(conn)), nil
	case "ws", "wss":
		origin := "http://localhost/"
		if u.Scheme == "wss" {
			origin = "https://localhost/"
		}
		rw, err := websocket.Dial(u.String(), origin)
		if err != nil {
			return nil, err
		}
		return ipc.NewConn(assistant.Talent, rw), nil
	case "mqtt":
		q, err := c.newQueue("assistant")
		if err != nil {
			return nil, err
		}
		return ipc.NewConn(assistant.Talent, mqtt.NewPacketReadWriter(q).ForCaller(TalentName)), nil
	default:
		return nil, fmt.Errorf("unknown talent URL scheme: %q", u.Scheme)
	}
}

func (c *Config) newQueue(role string) (*mqtt.Queue, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(c.TalentURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(role + "-" + MachineID())
	}
	return mqtt.NewQueue(opts, prefix), nil
}

func socketAddr(u *url.URL) (network, addr string) {
	if u.Scheme == "unix" {
		return "unix", u.Path
	}
	return "tcp", u.Host
}

// ServeTalent serves the talent Handler on TalentURL until ctx is done.
// Callers are served one at a time as the regions belong to a single pair.
func (c *Config) ServeTalent(ctx context.Context, h ipc.Handler) error {
	if c.IsLocal() {
		return errors.New("a local talent runs inside the assistant")
	}
	u, err := c.talentURL()
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "unix", "tcp":
		network, addr := socketAddr(u)
		ln, err := net.Listen(network, addr)
		if err != nil {
			return err
		}
		return serveListener(ctx, ln, h)
	case "ws":
		return serveWebsocket(ctx, u, h)
	case "mqtt":
		q, err := c.newQueue(TalentName)
		if err != nil {
			return err
		}
		rw := mqtt.NewPacketReadWriter(q).ForCallee(TalentName)
		return fx.NewRunnerWith(ctx).Go(
			fx.NamedRun("mqtt", rw),
			fx.NamedRun("server", ipc.NewServer(rw, h)),
		).Wait()
	default:
		return fmt.Errorf("unknown talent URL scheme: %q", u.Scheme)
	}
}

func serveListener(ctx context.Context, ln net.Listener, h ipc.Handler) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()
	glog.Infof("talent listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		glog.Infof("caller %s connected", conn.RemoteAddr())
		err = ipc.NewServer(stream.New(conn), h).Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Infof("caller %s disconnected: %v", conn.RemoteAddr(), err)
	}
}

func serveWebsocket(ctx context.Context, u *url.URL, h ipc.Handler) error {
	path := u.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(ctx, serialized(h)))
	server := &http.Server{Addr: u.Host, Handler: mux}
	stop := context.AfterFunc(ctx, func() { server.Close() })
	defer stop()
	glog.Infof("talent listening on ws://%s%s", u.Host, path)
	err := server.ListenAndServe()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// serialized makes concurrent websocket peers take turns on the regions.
func serialized(h ipc.Handler) ipc.Handler {
	local := ipc.NewLocal(assistant.Talent, h)
	return ipc.HandlerFunc(func(ctx context.Context, ch ipc.Channel, msg ipc.MessageInfo) ipc.MessageInfo {
		reply, err := local.Call(ctx, msg)
		if err != nil {
			return ipc.Reply(ipc.StatusError, nil)
		}
		return reply
	})
}
