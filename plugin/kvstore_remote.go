package plugin

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/hashicorp/yamux"
)

// RemoteStore is a KeyValueStore backed by a single administrative TCP
// connection multiplexed with yamux: each Get/Set/Delete opens its own
// logical stream so concurrent plugin requests never block behind one
// another on the wire, while the proxy only holds one real socket open
// to the store backend. plugin/rcon does not share this session; it
// dials its own TCP connection.
type RemoteStore struct {
	session *yamux.Session
}

// DialRemoteStore dials addr and opens a yamux client session over it.
func DialRemoteStore(addr string) (*RemoteStore, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("plugin: dial remote store %s: %w", addr, err)
	}
	session, err := yamux.Client(conn, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("plugin: open yamux session to %s: %w", addr, err)
	}
	return &RemoteStore{session: session}, nil
}

// Close tears down the underlying session and its connection.
func (r *RemoteStore) Close() error {
	return r.session.Close()
}

// request opens a fresh stream, sends one line, and reads one line
// back. The wire protocol is deliberately minimal: a remote store
// backend is expected to be a small companion process, not a general
// database, matching the scope a Minecraft proxy actually needs from
// one.
func (r *RemoteStore) request(line string) (string, error) {
	stream, err := r.session.Open()
	if err != nil {
		return "", fmt.Errorf("plugin: open kv stream: %w", err)
	}
	defer stream.Close()

	if _, err := fmt.Fprintf(stream, "%s\n", line); err != nil {
		return "", fmt.Errorf("plugin: write kv request: %w", err)
	}
	reply, err := bufio.NewReader(stream).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("plugin: read kv reply: %w", err)
	}
	return strings.TrimSuffix(reply, "\n"), nil
}

func (r *RemoteStore) Get(key string) (string, bool, error) {
	reply, err := r.request("GET " + key)
	if err != nil {
		return "", false, err
	}
	if reply == "" {
		return "", false, nil
	}
	const missing = "NIL"
	if reply == missing {
		return "", false, nil
	}
	return strings.TrimPrefix(reply, "OK "), true, nil
}

func (r *RemoteStore) Set(key, value string) error {
	_, err := r.request(fmt.Sprintf("SET %s %s", key, value))
	return err
}

func (r *RemoteStore) Delete(key string) error {
	_, err := r.request("DEL " + key)
	return err
}

var _ KeyValueStore = (*RemoteStore)(nil)
