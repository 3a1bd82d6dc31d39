package netutil

import (
	"net"
	"time"
)

// OptimizeTCPConn applies the socket options an endpoint's connection
// wants: Nagle disabled for low latency, keep-alive enabled so a dead
// peer is noticed instead of hanging the run loop forever, and 512 KiB
// send/receive buffers.
func OptimizeTCPConn(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(true); err != nil {
		return err
	}

	if err := tcpConn.SetKeepAlive(true); err != nil {
		return err
	}

	if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
		return err
	}

	if err := tcpConn.SetReadBuffer(512 * 1024); err != nil {
		return err
	}

	if err := tcpConn.SetWriteBuffer(512 * 1024); err != nil {
		return err
	}

	return nil
}

// SetTCPDeadlines applies read/write deadlines to conn; a zero
// duration leaves the corresponding deadline untouched.
func SetTCPDeadlines(conn net.Conn, readTimeout, writeTimeout time.Duration) error {
	if readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
	}

	if writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
	}

	return nil
}
