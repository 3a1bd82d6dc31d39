package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// NewCFB8Encrypter and NewCFB8Decrypter implement AES CFB8 (1-byte
// segment feedback), which Minecraft's protocol uses for its
// post-login stream encryption with the shared secret as both key and
// IV. The standard library's crypto/cipher.NewCFBEncrypter only
// implements full block-size feedback, not the 8-bit variant this
// wire format requires, so the segment-shifting register below is
// hand-rolled on top of the stdlib AES block primitive — the same
// approach every Minecraft-protocol implementation in the wild takes,
// since no published Go module exposes CFB8 as a reusable cipher.Stream.
type cfb8Stream struct {
	block     cipher.Block
	register  []byte
	decrypt   bool
	keystream []byte
}

// NewCFB8Encrypter returns a cipher.Stream that encrypts with AES-128
// CFB8 using key as both the AES key and the initial feedback
// register, as the wire format requires (§6: "AES-128 CFB8 with the
// negotiated shared secret as both key and IV").
func NewCFB8Encrypter(key []byte) (cipher.Stream, error) {
	return newCFB8(key, false)
}

// NewCFB8Decrypter returns the matching decryption stream.
func NewCFB8Decrypter(key []byte) (cipher.Stream, error) {
	return newCFB8(key, true)
}

func newCFB8(key []byte, decrypt bool) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wire: create AES-128 block cipher: %w", err)
	}
	register := make([]byte, block.BlockSize())
	copy(register, key)
	return &cfb8Stream{
		block:     block,
		register:  register,
		decrypt:   decrypt,
		keystream: make([]byte, block.BlockSize()),
	}, nil
}

func (s *cfb8Stream) XORKeyStream(dst, src []byte) {
	for i := range src {
		s.block.Encrypt(s.keystream, s.register)
		var feedback byte
		if s.decrypt {
			feedback = src[i]
			dst[i] = src[i] ^ s.keystream[0]
		} else {
			dst[i] = src[i] ^ s.keystream[0]
			feedback = dst[i]
		}
		copy(s.register, s.register[1:])
		s.register[len(s.register)-1] = feedback
	}
}
