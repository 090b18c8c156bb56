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

package bdaddr

import "testing"

func TestParseString(t *testing.T) {
	cases := []string{
		"AA:BB:CC:DD:EE:FF",
		"00:00:00:00:00:00",
		"01:23:45:67:89:AB",
	}

	for _, s := range cases {
		a, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := a.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"AA:BB:CC:DD:EE",
		"AA:BB:CC:DD:EE:ZZ",
		"",
	}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", s)
		}
	}
}

func TestIsResolvable(t *testing.T) {
	cases := []struct {
		byte0 byte
		want  bool
	}{
		{0x40, true},
		{0x7F, true},
		{0x80, false},
		{0xC0, false},
		{0xBF, false},
		{0x00, false},
		{0xFF, false},
	}

	for _, c := range cases {
		a := Addr{}
		a.Bytes[0] = c.byte0
		if got := a.IsResolvable(); got != c.want {
			t.Errorf("byte0=0x%02x: IsResolvable() = %v, want %v", c.byte0, got, c.want)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	a, err := Parse("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatal(err)
	}

	raw, err := a.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var b Addr
	if err := b.UnmarshalJSON(raw); err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Errorf("roundtrip mismatch: %v != %v", a, b)
	}
}
