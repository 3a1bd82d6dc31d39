package proxyctl

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"net"
	"testing"
	"time"

	"github.com/seiftnesse/mcproxy/config"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/protocol/registry"
	"github.com/seiftnesse/mcproxy/wire"
)

// TestSessionTerminatesEncryptionHandshakeOnBothLegs drives a full
// login-phase key exchange through a Session configured with
// AllowEncryption, playing both the real client and the real server,
// and checks that the proxy answers each of them itself, installing the
// client's shared secret on both legs, rather than forwarding the
// exchange unchanged.
func TestSessionTerminatesEncryptionHandshakeOnBothLegs(t *testing.T) {
	realClient, proxyClientSide := net.Pipe()
	proxyServerSide, realServer := net.Pipe()
	defer realClient.Close()
	defer realServer.Close()

	cfg := &config.Config{CompressionThreshold: -1, AllowEncryption: true}
	session := NewSession(proxyClientSide, proxyServerSide, registry.Default(), cfg)
	session.Server().Stream().ChangeState(protocol.Login)

	done := make(chan error, 1)
	go func() { done <- session.Run() }()

	serverKey, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate fake server key: %v", err)
	}
	serverPubDER, err := x509.MarshalPKIXPublicKey(&serverKey.PublicKey)
	if err != nil {
		t.Fatalf("marshal fake server public key: %v", err)
	}
	serverVerifyToken := []byte{1, 2, 3, 4}

	reqBuf := wire.AppendVarInt(nil, 0) // server_id length 0
	reqBuf = wire.AppendVarInt(reqBuf, int32(len(serverPubDER)))
	reqBuf = append(reqBuf, serverPubDER...)
	reqBuf = wire.AppendVarInt(reqBuf, int32(len(serverVerifyToken)))
	reqBuf = append(reqBuf, serverVerifyToken...)
	reqPayload := append(wire.AppendVarInt(nil, 0x01), reqBuf...)
	reqFrame, err := wire.EncodeFrame(reqPayload, -1)
	if err != nil {
		t.Fatalf("encode encryption_request frame: %v", err)
	}
	go realServer.Write(reqFrame)

	substituted := readFrame(t, realClient)
	id, n, err := wire.DecodeVarInt(substituted)
	if err != nil || id != 0x01 {
		t.Fatalf("decode substituted encryption_request id: %d, %v", id, err)
	}
	serverIDLen, n2, err := wire.DecodeVarInt(substituted[n:])
	if err != nil {
		t.Fatalf("decode server_id length: %v", err)
	}
	pos := n + n2 + int(serverIDLen)
	pubKeyLen, n3, err := wire.DecodeVarInt(substituted[pos:])
	if err != nil {
		t.Fatalf("decode public_key length: %v", err)
	}
	pos += n3
	proxyPubDER := substituted[pos : pos+int(pubKeyLen)]
	pos += int(pubKeyLen)
	verifyLen, n4, err := wire.DecodeVarInt(substituted[pos:])
	if err != nil {
		t.Fatalf("decode verify_token length: %v", err)
	}
	pos += n4
	clientVerifyToken := append([]byte(nil), substituted[pos:pos+int(verifyLen)]...)

	proxyPub, err := x509.ParsePKIXPublicKey(proxyPubDER)
	if err != nil {
		t.Fatalf("parse proxy public key: %v", err)
	}
	proxyRSAPub, ok := proxyPub.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("proxy public key is %T, not RSA", proxyPub)
	}

	clientSharedSecret := []byte("0123456789abcdef")
	encSecret, err := rsa.EncryptPKCS1v15(rand.Reader, proxyRSAPub, clientSharedSecret)
	if err != nil {
		t.Fatalf("encrypt shared secret: %v", err)
	}
	encVerify, err := rsa.EncryptPKCS1v15(rand.Reader, proxyRSAPub, clientVerifyToken)
	if err != nil {
		t.Fatalf("encrypt verify token: %v", err)
	}
	respBuf := wire.AppendVarInt(nil, int32(len(encSecret)))
	respBuf = append(respBuf, encSecret...)
	respBuf = wire.AppendVarInt(respBuf, int32(len(encVerify)))
	respBuf = append(respBuf, encVerify...)
	respPayload := append(wire.AppendVarInt(nil, 0x01), respBuf...)
	respFrame, err := wire.EncodeFrame(respPayload, -1)
	if err != nil {
		t.Fatalf("encode encryption_response frame: %v", err)
	}
	go realClient.Write(respFrame)

	forwarded := readFrame(t, realServer)
	id, n, err = wire.DecodeVarInt(forwarded)
	if err != nil || id != 0x01 {
		t.Fatalf("decode forwarded encryption_response id: %d, %v", id, err)
	}
	secretLen, n2, err := wire.DecodeVarInt(forwarded[n:])
	if err != nil {
		t.Fatalf("decode shared_secret length: %v", err)
	}
	pos = n + n2
	encSecretToServer := forwarded[pos : pos+int(secretLen)]
	pos += int(secretLen)
	verifyLen2, n5, err := wire.DecodeVarInt(forwarded[pos:])
	if err != nil {
		t.Fatalf("decode verify_token length: %v", err)
	}
	pos += n5
	encVerifyToServer := forwarded[pos : pos+int(verifyLen2)]

	decryptedSecret, err := rsa.DecryptPKCS1v15(rand.Reader, serverKey, encSecretToServer)
	if err != nil {
		t.Fatalf("server decrypt shared secret: %v", err)
	}
	if string(decryptedSecret) != string(clientSharedSecret) {
		t.Errorf("server received shared secret %q, want %q", decryptedSecret, clientSharedSecret)
	}
	decryptedVerify, err := rsa.DecryptPKCS1v15(rand.Reader, serverKey, encVerifyToServer)
	if err != nil {
		t.Fatalf("server decrypt verify token: %v", err)
	}
	if string(decryptedVerify) != string(serverVerifyToken) {
		t.Errorf("server received verify token %q, want %q", decryptedVerify, serverVerifyToken)
	}

	realClient.Close()
	realServer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return after both legs closed")
	}
}

// readFrame reads one length-prefixed, uncompressed frame directly off
// conn: a varint length followed by that many payload bytes.
func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := conn.Read(buf[total:])
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		total += n
		length, used, err := wire.DecodeVarInt(buf[:total])
		if err != nil {
			continue
		}
		if total >= used+int(length) {
			return buf[used : used+int(length)]
		}
	}
}
