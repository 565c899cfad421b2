// Copyright (C) 2024 The materialbin Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package materialbin

import (
	"crypto/aes"
	"crypto/cipher"
)

const gcmNonceSize = 12

// resolveBody dispatches on the encryption variant tag and returns a
// cursor positioned at offset 0 of the material body — a zero-copy
// sub-slice for NONE, or a freshly decrypted, independently-owned
// buffer for KYPR (§4.8).
func resolveBody(c *cursor, variant EncryptionVariant) (*cursor, error) {
	switch variant {
	case EncryptionNone:
		return newCursor(c.buf[c.pos:]), nil
	case EncryptionKeyPair:
		return decryptKeyPair(c)
	case EncryptionSimplePassphrase:
		return nil, &Error{Kind: UnsupportedEncryption, Which: "SMPL"}
	default:
		return nil, errInvalidTag("EncryptionVariant", int64(variant), c.pos-4)
	}
}

func decryptKeyPair(c *cursor) (*cursor, error) {
	key, err := c.lenBytes()
	if err != nil {
		return nil, err
	}
	nonce, err := c.lenBytes()
	if err != nil {
		return nil, err
	}
	ciphertext, err := c.lenBytes()
	if err != nil {
		return nil, err
	}

	if len(nonce) > gcmNonceSize {
		nonce = nonce[:gcmNonceSize]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &Error{Kind: CryptoFailure, Why: "decrypt", Err: err}
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, gcmNonceSize)
	if err != nil {
		return nil, &Error{Kind: CryptoFailure, Why: "decrypt", Err: err}
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &Error{Kind: CryptoFailure, Why: "tag", Err: err}
	}
	return newCursor(plaintext), nil
}
