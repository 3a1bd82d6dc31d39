// Package proxyctl is the top-level controller: it accepts client
// connections, dials the real server for each one, and pairs the two
// legs as a Session that forwards packets between them by default
// while letting plugins intercept and rewrite traffic.
package proxyctl

import (
	"fmt"
	"net"
	"sync"

	"github.com/seiftnesse/mcproxy/config"
	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/logger"
	"github.com/seiftnesse/mcproxy/netutil"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/registry"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// Plugin attaches handlers to a freshly created Session before it
// starts running, ahead of default forwarding.
type Plugin interface {
	Name() string
	Attach(s *Session)
}

// Server accepts client connections and spins up a Session per
// connection, dialing UpstreamHost:UpstreamPort for each one.
type Server struct {
	cfg      *config.Config
	listener net.Listener
	plugins  []Plugin

	mu       sync.Mutex
	stopping bool
}

// New binds a listener on cfg.ListenAddress. Plugins are attached, in
// order, to every Session this server creates.
func New(cfg *config.Config, plugins []Plugin) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("proxyctl: listen on %s: %w", cfg.ListenAddress, err)
	}
	return &Server{cfg: cfg, listener: ln, plugins: plugins}, nil
}

// Serve accepts connections until Stop is called, handling each on
// its own goroutine. It returns nil after Stop, or the Accept error
// that ended the loop.
func (s *Server) Serve() error {
	logger.Info("proxyctl: listening on %s, upstream %s:%d", s.cfg.ListenAddress, s.cfg.UpstreamHost, s.cfg.UpstreamPort)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopping := s.stopping
			s.mu.Unlock()
			if stopping {
				return nil
			}
			return fmt.Errorf("proxyctl: accept: %w", err)
		}
		go s.handle(conn)
	}
}

// Stop closes the listener, ending Serve's loop.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	return s.listener.Close()
}

func (s *Server) handle(clientConn net.Conn) {
	logger.Info("proxyctl: new connection from %s", clientConn.RemoteAddr())

	dest := netutil.Destination{Host: s.cfg.UpstreamHost, Port: s.cfg.UpstreamPort}
	upstreamConn, err := net.DialTimeout("tcp", dest.String(), s.cfg.DialTimeout)
	if err != nil {
		logger.Error("proxyctl: dial upstream %s: %v", dest.String(), err)
		clientConn.Close()
		return
	}
	logger.Info("proxyctl: connected to upstream %s for %s", dest.String(), clientConn.RemoteAddr())

	if err := netutil.OptimizeTCPConn(clientConn); err != nil {
		logger.Warn("proxyctl: optimize client conn: %v", err)
	}
	if err := netutil.OptimizeTCPConn(upstreamConn); err != nil {
		logger.Warn("proxyctl: optimize upstream conn: %v", err)
	}

	version := registry.Default()
	session := NewSession(clientConn, upstreamConn, version, s.cfg)

	for _, p := range s.plugins {
		p.Attach(session)
	}

	session.Events.Publish("connect", session)
	if err := session.Run(); err != nil {
		logger.Warn("proxyctl: session for %s ended: %v", clientConn.RemoteAddr(), err)
	}
}

// Session owns one proxied connection's two Endpoints: client (facing
// the real Minecraft client) and server (facing the real Minecraft
// server). Plugins register handlers on either leg through Session's
// accessors rather than reaching into a shared relation, since the
// pairing itself belongs to Session, not to the endpoints.
type Session struct {
	client *endpoint.Endpoint
	server *endpoint.Endpoint
	cfg    *config.Config

	// Events carries this session's "connect"/"disconnect" lifecycle
	// notifications. Plugins that need to act once per session rather
	// than per packet (flushing a cache, closing a remote-admin
	// connection) subscribe here instead of hooking every packet type.
	Events *EventBus

	closeOnce sync.Once
}

// NewSession wraps clientConn/upstreamConn as a paired client/server
// leg and registers the default bidirectional forwarding behavior.
func NewSession(clientConn, upstreamConn net.Conn, version *protocol.ProtocolVersion, cfg *config.Config) *Session {
	client := endpoint.New(clientConn, "client", version, protocol.ServerBound)
	server := endpoint.New(upstreamConn, "server", version, protocol.ClientBound)
	endpoint.Pair(client, server)

	s := &Session{client: client, server: server, cfg: cfg, Events: NewEventBus()}
	if cfg.CompressionThreshold >= 0 {
		client.SetCompressionThreshold(cfg.CompressionThreshold)
		server.SetCompressionThreshold(cfg.CompressionThreshold)
	}
	attachCompressionSync(s)
	if cfg.AllowEncryption {
		if err := attachEncryptionMITM(s); err != nil {
			logger.Error("proxyctl: encryption disabled for this session: %v", err)
		}
	}
	if cfg.RateLimitBytesPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = cfg.RateLimitBytesPerSecond
		}
		client.SetReadLimiter(cfg.RateLimitBytesPerSecond, burst)
		server.SetReadLimiter(cfg.RateLimitBytesPerSecond, burst)
	}
	return s
}

// Client returns the leg facing the real Minecraft client, for
// plugins that want to intercept server_bound packets.
func (s *Session) Client() *endpoint.Endpoint { return s.client }

// Server returns the leg facing the real Minecraft server, for
// plugins that want to intercept client_bound packets.
func (s *Session) Server() *endpoint.Endpoint { return s.server }

// Run drives both legs until either disconnects, cascading the
// disconnect to the other side, and blocks until both have stopped.
func (s *Session) Run() error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- s.client.Run(s.forwardTo(s.server))
	}()
	go func() {
		errCh <- s.server.Run(s.forwardTo(s.client))
	}()

	first := <-errCh
	s.closeBoth("peer disconnected")
	<-errCh
	return first
}

// forwardTo returns the default fallback handler for packets a leg's
// own handlers didn't consume: send them unchanged to dst.
func (s *Session) forwardTo(dst *endpoint.Endpoint) endpoint.Handler {
	return func(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
		return true, dst.Send(val)
	}
}

func (s *Session) closeBoth(reason string) {
	s.closeOnce.Do(func() {
		s.client.Close(reason)
		s.server.Close(reason)
		s.Events.Publish("disconnect", reason)
	})
}
