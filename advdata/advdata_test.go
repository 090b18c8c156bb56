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

package advdata

import (
	"bytes"
	"testing"

	"github.com/nimble-bt/bleadv/hci"
)

func TestPrependFlags(t *testing.T) {
	data := []byte{0x02, 0xFF, 0x42}
	got := PrependFlags(data, hci.FlagsGeneralDiscoverable)

	want := []byte{0x02, hci.EIRFlagsType, hci.FlagsGeneralDiscoverable, 0x02, 0xFF, 0x42}
	if !bytes.Equal(got, want) {
		t.Errorf("PrependFlags = %v, want %v", got, want)
	}
}

func TestPrependFlagsUnconditional(t *testing.T) {
	data := []byte{0x02, hci.EIRFlagsType, hci.FlagsLimitedDiscoverable, 0x02, 0xFF, 0x42}
	got := PrependFlags(data, hci.FlagsGeneralDiscoverable)

	want := []byte{0x02, hci.EIRFlagsType, hci.FlagsGeneralDiscoverable}
	want = append(want, data...)
	if !bytes.Equal(got, want) {
		t.Errorf("PrependFlags = %v, want %v", got, want)
	}
}

func TestRewriteTxPower(t *testing.T) {
	data := []byte{
		0x02, hci.EIRFlagsType, 0x02,
		0x02, hci.EIRTxPowerLevelType, 0x00,
		0x02, 0xFF, 0x42,
	}

	got := RewriteTxPower(data, -4)

	want := []byte{
		0x02, hci.EIRFlagsType, 0x02,
		0x02, hci.EIRTxPowerLevelType, 0xFC, // -4 as byte
		0x02, 0xFF, 0x42,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("RewriteTxPower = %v, want %v", got, want)
	}
}

func TestRewriteTxPowerNoOpWithoutStructure(t *testing.T) {
	data := []byte{0x02, hci.EIRFlagsType, 0x02}
	got := RewriteTxPower(data, -4)

	if !bytes.Equal(got, data) {
		t.Errorf("RewriteTxPower modified a payload with no TX Power structure: %v", got)
	}
}
