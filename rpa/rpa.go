/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package rpa generates resolvable private addresses the way the
// controller's ah() function does: encrypt a padded prand with the
// instance's IRK under AES-128-ECB and keep the low three bytes as the
// hash half of the address.
package rpa

import (
	"crypto/aes"
	"crypto/rand"

	"github.com/nimble-bt/bleadv/bdaddr"
)

// Encryptor performs the single AES-128 block encryption the hash
// function needs. Swappable so tests can supply a table-driven fake
// instead of running real AES.
type Encryptor interface {
	Encrypt(key [16]byte, block [16]byte) [16]byte
}

// AES128 is the default Encryptor, backed by crypto/aes.
type AES128 struct{}

func NewAES128() *AES128 { return &AES128{} }

func (AES128) Encrypt(key [16]byte, block [16]byte) [16]byte {
	c, err := aes.NewCipher(key[:])
	if err != nil {
		// key is always 16 bytes; aes.NewCipher only fails on bad key
		// length, which cannot happen here.
		panic(err)
	}

	var out [16]byte
	c.Encrypt(out[:], block[:])
	return out
}

// NewPrand draws a fresh 3-byte prand and forces the top two bits of
// prand[2] to the resolvable-private-address class (0b01, BLE_RESOLVE_ADDR_MSB
// = 0x40), matching the original's rand[2] &= ~mask; rand[2] |= msb. prand[2]
// is forced, not prand[0], because Generate places prand[2] at Bytes[0] —
// the byte bdaddr.Addr.IsResolvable checks.
func NewPrand() ([3]byte, error) {
	var p [3]byte
	if _, err := rand.Read(p[:]); err != nil {
		return p, err
	}
	p[2] = (p[2] & 0x3f) | 0x40
	return p, nil
}

// ah computes the controller's hash function: encrypt padded prand with
// irk, keep the low 3 bytes of the ciphertext.
func ah(enc Encryptor, irk [16]byte, prand [3]byte) [3]byte {
	var block [16]byte
	block[0] = prand[0]
	block[1] = prand[1]
	block[2] = prand[2]

	out := enc.Encrypt(irk, block)

	var hash [3]byte
	copy(hash[:], out[:3])
	return hash
}

// Generate builds the resolvable private address for prand under irk.
//
// The byte layout mirrors the original implementation's
// OnRpaGenerationComplete, which is the reverse of the naive reading of
// "address bytes hold prand then hash": prand lands (reversed) in
// address bytes [0..2], and the hash lands (reversed) in address bytes
// [3..5]. Byte 0 therefore carries prand[2], the byte NewPrand forces the
// class bits into, which is where bdaddr.Addr.IsResolvable checks them.
func Generate(prand [3]byte, irk [16]byte, enc Encryptor) bdaddr.Addr {
	hash := ah(enc, irk, prand)

	var a bdaddr.Addr
	a.Bytes[2] = prand[0]
	a.Bytes[1] = prand[1]
	a.Bytes[0] = prand[2]

	a.Bytes[5] = hash[0]
	a.Bytes[4] = hash[1]
	a.Bytes[3] = hash[2]

	return a
}
