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

// Package bdaddr holds the small address types shared by the hci, rpa and
// advset packages, kept separate so none of them need to import each other
// just to talk about a 6-byte Bluetooth address.
package bdaddr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AddrType mirrors the own-address-type values the controller accepts in
// SetAdvertisingParameters.
type AddrType int

const (
	Public AddrType = 0
	Random AddrType = 1
)

var addrTypeStringMap = map[AddrType]string{
	Public: "public",
	Random: "random",
}

func (t AddrType) String() string {
	s, ok := addrTypeStringMap[t]
	if !ok {
		return "unknown"
	}
	return s
}

// Addr is a 6-byte BD_ADDR, most significant byte first for display
// purposes (matches the conventional "AA:BB:CC:DD:EE:FF" notation).
type Addr struct {
	Bytes [6]byte
}

func Parse(s string) (Addr, error) {
	a := Addr{}

	toks := strings.Split(strings.ToLower(s), ":")
	if len(toks) != 6 {
		return a, fmt.Errorf("invalid BD_ADDR string: %s", s)
	}

	for i, t := range toks {
		u64, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return a, err
		}
		a.Bytes[i] = byte(u64)
	}

	return a, nil
}

func (a Addr) String() string {
	var buf bytes.Buffer
	buf.Grow(len(a.Bytes) * 3)

	for i, b := range a.Bytes {
		if i != 0 {
			buf.WriteString(":")
		}
		fmt.Fprintf(&buf, "%02X", b)
	}

	return buf.String()
}

func (a Addr) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Addr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// IsResolvable reports whether the top two bits of the address are the
// resolvable-private-address class (0b01, BLE_RESOLVE_ADDR_MSB = 0x40 in
// the original). Those bits live in prand's third byte, which the RPA
// construction of package rpa places at Bytes[0] (matching the original
// implementation's own_address layout, where own_address[0] is assigned
// the forced prand byte).
func (a Addr) IsResolvable() bool {
	return a.Bytes[0]&0xc0 == 0x40
}
