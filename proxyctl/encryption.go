package proxyctl

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/seiftnesse/mcproxy/endpoint"
	"github.com/seiftnesse/mcproxy/logger"
	"github.com/seiftnesse/mcproxy/protocol"
	"github.com/seiftnesse/mcproxy/wire"
	"github.com/seiftnesse/mcproxy/wire/field"
)

// rsaKeyBits matches vanilla's own login-phase key size (spec.md §9:
// "AES-128 CFB8 with the negotiated shared secret as both key and
// IV" — the RSA wrapping around that exchange is sized the same as
// the server it is impersonating).
const rsaKeyBits = 1024

// mitmEncryption terminates the login-phase RSA key exchange at the
// proxy on both legs, rather than forwarding it unchanged: the client
// encrypts its shared secret under the proxy's own key, not the real
// server's, so the proxy can install AES-128 CFB8 on the client leg
// and then re-encrypt that same shared secret under the real server's
// key and install it on the server leg as well, with its own cipher
// streams. Without this, the connection would carry traffic
// the proxy cannot decode from the moment encryption_response is sent.
type mitmEncryption struct {
	session *Session

	key *rsa.PrivateKey

	verifyToken []byte // sent to the real client, checked against its reply

	serverPublicKey *rsa.PublicKey
	serverVerify    []byte // the real server's own verify token, forwarded back to it
}

// attachEncryptionMITM wires the login-phase handlers that perform the
// key-exchange substitution described above. It is only attached when
// the session's configuration allows encryption at all.
func attachEncryptionMITM(s *Session) error {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return fmt.Errorf("proxyctl: generate MITM RSA key: %w", err)
	}
	m := &mitmEncryption{session: s, key: key}

	s.server.On("encryption_request", m.handleServerEncryptionRequest)
	s.client.On("encryption_response", m.handleClientEncryptionResponse)
	return nil
}

// handleServerEncryptionRequest intercepts the real server's request
// to the proxy (which is standing in as its client), remembers the
// server's public key and verify token for later, and issues the
// proxy's own request to the real client in its place. It never
// forwards the original request.
func (m *mitmEncryption) handleServerEncryptionRequest(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
	publicKeyDER := val.MustField("public_key").Raw().([]byte)
	pub, err := x509.ParsePKIXPublicKey(publicKeyDER)
	if err != nil {
		return false, fmt.Errorf("proxyctl: parse server public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("proxyctl: server public key is %T, not RSA", pub)
	}
	m.serverPublicKey = rsaPub
	m.serverVerify = append([]byte(nil), val.MustField("verify_token").Raw().([]byte)...)

	m.verifyToken = make([]byte, 4)
	if _, err := rand.Read(m.verifyToken); err != nil {
		return false, fmt.Errorf("proxyctl: generate verify token: %w", err)
	}

	ownPublicKeyDER, err := x509.MarshalPKIXPublicKey(&m.key.PublicKey)
	if err != nil {
		return false, fmt.Errorf("proxyctl: marshal MITM public key: %w", err)
	}
	serverID := val.MustField("server_id").Raw().(string)

	req, err := encryptionRequestBody(m.session.server.Stream(), serverID, ownPublicKeyDER, m.verifyToken)
	if err != nil {
		return false, err
	}
	logger.Debug("proxyctl: substituting encryption_request toward client")
	return false, m.session.client.Send(req)
}

// handleClientEncryptionResponse completes the client-facing half of
// the exchange (decrypt the shared secret, verify the echoed token,
// turn on encryption for that leg) and then performs the equivalent
// exchange with the real server, passing it the same shared secret, so
// both legs end up encrypted with the same key but separate cipher
// streams.
func (m *mitmEncryption) handleClientEncryptionResponse(ep *endpoint.Endpoint, val *field.Value) (bool, error) {
	encryptedSecret := val.MustField("shared_secret").Raw().([]byte)
	encryptedVerify := val.MustField("verify_token").Raw().([]byte)

	sharedSecret, err := rsa.DecryptPKCS1v15(rand.Reader, m.key, encryptedSecret)
	if err != nil {
		return false, fmt.Errorf("proxyctl: decrypt client shared secret: %w", err)
	}
	echoedVerify, err := rsa.DecryptPKCS1v15(rand.Reader, m.key, encryptedVerify)
	if err != nil {
		return false, fmt.Errorf("proxyctl: decrypt client verify token: %w", err)
	}
	if !bytes.Equal(echoedVerify, m.verifyToken) {
		return false, fmt.Errorf("proxyctl: client verify token mismatch")
	}

	if err := m.session.client.EnableEncryption(sharedSecret); err != nil {
		return false, err
	}

	serverSecretEnc, err := rsa.EncryptPKCS1v15(rand.Reader, m.serverPublicKey, sharedSecret)
	if err != nil {
		return false, fmt.Errorf("proxyctl: encrypt shared secret for server: %w", err)
	}
	serverVerifyEnc, err := rsa.EncryptPKCS1v15(rand.Reader, m.serverPublicKey, m.serverVerify)
	if err != nil {
		return false, fmt.Errorf("proxyctl: encrypt verify token for server: %w", err)
	}
	resp, err := encryptionResponseBody(m.session.client.Stream(), serverSecretEnc, serverVerifyEnc)
	if err != nil {
		return false, err
	}
	if err := m.session.server.Send(resp); err != nil {
		return false, err
	}
	if err := m.session.server.EnableEncryption(sharedSecret); err != nil {
		return false, err
	}

	logger.Debug("proxyctl: encryption established on both legs")
	return false, nil
}

// encryptionRequestBody builds a fresh encryption_request packet value
// the way login.EncryptionRequest's own wire layout expects, by
// encoding the real bytes and parsing them back rather than poking at
// Value internals directly.
func encryptionRequestBody(stream *protocol.StreamContext, serverID string, publicKey, verifyToken []byte) (*field.Value, error) {
	pt, ok := stream.PacketTypeByName("encryption_request")
	if !ok {
		return nil, fmt.Errorf("proxyctl: encryption_request packet type not registered")
	}
	buf := wire.AppendVarInt(nil, int32(len(serverID)))
	buf = append(buf, serverID...)
	buf = wire.AppendVarInt(buf, int32(len(publicKey)))
	buf = append(buf, publicKey...)
	buf = wire.AppendVarInt(buf, int32(len(verifyToken)))
	buf = append(buf, verifyToken...)

	val, err := pt.Body.Parse(field.NewCursor(buf), nil)
	if err != nil {
		return nil, fmt.Errorf("proxyctl: build encryption_request: %w", err)
	}
	val.TypeName = pt.Name
	val.TypeID = pt.ID
	return val, nil
}

func encryptionResponseBody(stream *protocol.StreamContext, sharedSecret, verifyToken []byte) (*field.Value, error) {
	pt, ok := stream.PacketTypeByName("encryption_response")
	if !ok {
		return nil, fmt.Errorf("proxyctl: encryption_response packet type not registered")
	}
	buf := wire.AppendVarInt(nil, int32(len(sharedSecret)))
	buf = append(buf, sharedSecret...)
	buf = wire.AppendVarInt(buf, int32(len(verifyToken)))
	buf = append(buf, verifyToken...)

	val, err := pt.Body.Parse(field.NewCursor(buf), nil)
	if err != nil {
		return nil, fmt.Errorf("proxyctl: build encryption_response: %w", err)
	}
	val.TypeName = pt.Name
	val.TypeID = pt.ID
	return val, nil
}
