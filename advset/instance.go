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

import (
	"github.com/nimble-bt/bleadv/alarm"
	"github.com/nimble-bt/bleadv/bdaddr"
	"github.com/nimble-bt/bleadv/hci"
)

// instance is one controller advertising set slot. Every field is
// mutated only from the manager's dispatch loop (§5 of the design this
// package implements: single-threaded cooperative).
type instance struct {
	instID uint8
	inUse  bool

	props       hci.AdvEventProperties
	ownAddrType bdaddr.AddrType
	ownAddr     bdaddr.Addr
	txPower     int8
	timeoutS    uint32

	advRaddrTimer alarm.Canceler
	timeoutTimer  alarm.Canceler
}

// InvalidInstID is the sentinel inst_id value delivered to Register's
// callback when allocation fails.
const InvalidInstID uint8 = 0xFF

// table is the fixed-capacity instance array, sized once at
// construction time by the HCI's reported instance count.
type table struct {
	instances []instance
}

func newTable(instCount uint8) *table {
	t := &table{
		instances: make([]instance, instCount),
	}
	for i := range t.instances {
		t.instances[i].instID = uint8(i)
	}
	return t
}

func (t *table) get(instID uint8) (*instance, bool) {
	if int(instID) >= len(t.instances) {
		return nil, false
	}
	return &t.instances[instID], true
}

// allocate scans for the first free slot, marks it in use, and returns
// it. The returned instance has been reset to its zero configuration;
// callers (Register) are responsible for filling in address fields.
func (t *table) allocate() (*instance, bool) {
	for i := range t.instances {
		if !t.instances[i].inUse {
			inst := &t.instances[i]
			*inst = instance{instID: inst.instID, inUse: true}
			return inst, true
		}
	}
	return nil, false
}

func (t *table) count() int {
	return len(t.instances)
}
