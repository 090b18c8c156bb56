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

package advset

import "github.com/nimble-bt/bleadv/bdaddr"

// InstanceSnapshot is a read-only, exported view of one table slot, for
// status reporting and CBOR dumping (cmd/bleadvctl) — the internal
// instance type stays unexported so nothing outside this package can
// mutate table state directly.
type InstanceSnapshot struct {
	InstID      uint8
	InUse       bool
	Properties  uint16
	OwnAddrType string
	OwnAddress  string
	TxPower     int8
	TimeoutS    uint32
}

// Snapshot returns the current state of every instance table slot.
func (m *Manager) Snapshot() []InstanceSnapshot {
	out := make([]InstanceSnapshot, len(m.table.instances))
	for i := range m.table.instances {
		inst := &m.table.instances[i]
		out[i] = InstanceSnapshot{
			InstID:      inst.instID,
			InUse:       inst.inUse,
			Properties:  uint16(inst.props),
			OwnAddrType: addrTypeName(inst.ownAddrType),
			OwnAddress:  inst.ownAddr.String(),
			TxPower:     inst.txPower,
			TimeoutS:    inst.timeoutS,
		}
	}
	return out
}

func addrTypeName(t bdaddr.AddrType) string {
	return t.String()
}
