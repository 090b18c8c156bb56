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

// Package fragment splits an advertising/scan-response/periodic payload
// into controller-sized chunks and walks them one at a time, the same
// offset-loop shape mtech_lora's send_fragments uses for LoRa segments,
// generalized from a fixed first/last bit to the four HCI data
// operations (first/intermediate/last/complete).
package fragment

import "github.com/nimble-bt/bleadv/hci"

// SendFunc transmits one chunk with the given operation tag and invokes
// cb with the controller's status for that chunk.
type SendFunc func(op hci.DataOperation, chunk []byte, cb func(status hci.Status))

// DoneFunc is invoked once, after every chunk has been sent and accepted,
// or as soon as any chunk comes back with a non-success status.
type DoneFunc func(status hci.Status)

// Send fragments data into chunks of at most hci.MaxDataLen bytes and
// sends them in order via send, completing with done.
//
// An empty payload is still sent, as a single zero-length COMPLETE
// chunk — this is what the original's DivideAndSendData does when
// length is 0, since it never special-cases that length before entering
// the fragmentation loop.
func Send(data []byte, send SendFunc, done DoneFunc) {
	if len(data) == 0 {
		send(hci.OpComplete, nil, func(status hci.Status) {
			done(status)
		})
		return
	}

	sendFrom(data, 0, true, send, done)
}

func sendFrom(data []byte, offset int, first bool, send SendFunc, done DoneFunc) {
	remaining := data[offset:]

	end := len(remaining)
	last := true
	if end > hci.MaxDataLen {
		end = hci.MaxDataLen
		last = false
	}
	chunk := remaining[:end]

	op := opFor(first, last)

	send(op, chunk, func(status hci.Status) {
		if status != hci.StatusSuccess {
			done(status)
			return
		}

		if last {
			done(hci.StatusSuccess)
			return
		}

		sendFrom(data, offset+end, false, send, done)
	})
}

func opFor(first, last bool) hci.DataOperation {
	switch {
	case first && last:
		return hci.OpComplete
	case first:
		return hci.OpFirst
	case last:
		return hci.OpLast
	default:
		return hci.OpIntermediate
	}
}
