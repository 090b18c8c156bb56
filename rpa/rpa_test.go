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

package rpa

import "testing"

func TestNewPrandForcesResolvableClass(t *testing.T) {
	for i := 0; i < 50; i++ {
		p, err := NewPrand()
		if err != nil {
			t.Fatal(err)
		}
		if p[2]&0xc0 != 0x40 {
			t.Fatalf("prand[2]=0x%02x, want top two bits 01 (0x40)", p[2])
		}
	}
}

// identityEncryptor returns the plaintext block unchanged, so test expectations don't
// need a real AES reference vector.
type identityEncryptor struct{}

func (identityEncryptor) Encrypt(key [16]byte, block [16]byte) [16]byte {
	return block
}

func TestGenerateLayout(t *testing.T) {
	var irk [16]byte
	prand := [3]byte{0x11, 0x22, 0x33}

	addr := Generate(prand, irk, identityEncryptor{})

	// identityEncryptor makes the hash equal the zero-padded prand block,
	// so hash = {prand[0], prand[1], prand[2]} = {0x11, 0x22, 0x33}.
	if addr.Bytes[2] != prand[0] || addr.Bytes[1] != prand[1] || addr.Bytes[0] != prand[2] {
		t.Fatalf("prand not laid out into bytes [0..2] reversed: %v", addr.Bytes)
	}
	if addr.Bytes[5] != 0x11 || addr.Bytes[4] != 0x22 || addr.Bytes[3] != 0x33 {
		t.Fatalf("hash not laid out into bytes [3..5] reversed: %v", addr.Bytes)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	var irk [16]byte
	for i := range irk {
		irk[i] = byte(i)
	}
	prand := [3]byte{0x40, 0x01, 0x02}

	a1 := Generate(prand, irk, NewAES128())
	a2 := Generate(prand, irk, NewAES128())

	if a1 != a2 {
		t.Fatalf("Generate is not deterministic for identical inputs: %v != %v", a1, a2)
	}
}
