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

// Package advdata rewrites the AD structures inside a raw advertising
// payload, mirroring the small amount of structure-aware editing the
// original SetData does before handing bytes to DivideAndSendData: it
// prepends a Flags structure for legacy connectable sets, and patches
// the TX Power Level structure with the power the controller actually
// granted.
package advdata

import "github.com/nimble-bt/bleadv/hci"

// structure is one parsed AD structure: [length][type][data...], where
// length counts type+data but not itself.
type structure struct {
	typ  byte
	data []byte
}

func parse(payload []byte) []structure {
	var out []structure

	i := 0
	for i < len(payload) {
		length := int(payload[i])
		if length == 0 {
			break
		}
		if i+1+length > len(payload) {
			// truncated structure; stop walking rather than panic on
			// malformed input.
			break
		}

		typ := payload[i+1]
		data := payload[i+2 : i+1+length]
		out = append(out, structure{typ: typ, data: data})

		i += 1 + length
	}

	return out
}

func (s structure) encode() []byte {
	buf := make([]byte, 0, 2+len(s.data))
	buf = append(buf, byte(1+len(s.data)))
	buf = append(buf, s.typ)
	buf = append(buf, s.data...)
	return buf
}

func render(structs []structure) []byte {
	var out []byte
	for _, s := range structs {
		out = append(out, s.encode()...)
	}
	return out
}

// PrependFlags unconditionally inserts a Flags AD structure at the front
// of payload, matching the original's SetData, which prepends Flags for
// every legacy-connectable non-scan-rsp payload regardless of whether one
// is already present. Used for legacy-connectable sets, the same
// condition hci.AdvEventProperties.LegacyConnectable reports.
func PrependFlags(payload []byte, flags byte) []byte {
	out := make([]byte, 0, len(payload)+3)
	out = append(out, structure{typ: hci.EIRFlagsType, data: []byte{flags}}.encode()...)
	out = append(out, payload...)
	return out
}

// RewriteTxPower overwrites the value of the TX Power Level AD structure,
// if one is present, with the power the controller granted in response
// to SetParameters. Payloads without a TX Power Level structure are
// returned unchanged.
func RewriteTxPower(payload []byte, txPower int8) []byte {
	structs := parse(payload)

	found := false
	for i := range structs {
		if structs[i].typ == hci.EIRTxPowerLevelType {
			structs[i].data = []byte{byte(txPower)}
			found = true
		}
	}

	if !found {
		return payload
	}

	return render(structs)
}
