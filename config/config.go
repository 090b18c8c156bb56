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

// Package config loads bleadvctl's on-disk settings, the way
// newtmgr/config loads connection profiles: a small YAML file under the
// user's home directory, with a handful of named overrides coercible
// from loosely-typed CLI input.
package config

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	yaml "gopkg.in/yaml.v2"
)

// DefaultFileName is the config file bleadvctl reads when no -c flag is
// given, resolved relative to the user's home directory.
const DefaultFileName = ".bleadvctl.yml"

// Config is the on-disk settings bleadvctl needs to construct an
// advset.Manager.
type Config struct {
	InstanceCount     uint8  `yaml:"inst_count"`
	PrivacyEnabled    bool   `yaml:"privacy_enabled"`
	PrivacyIntervalMs int    `yaml:"privacy_interval_ms"`
	PublicAddress     string `yaml:"public_address"`
	IRKHex            string `yaml:"irk"`
}

// Default returns the settings bleadvctl's demo mode uses when no config
// file is present.
func Default() Config {
	return Config{
		InstanceCount:     4,
		PrivacyEnabled:    false,
		PrivacyIntervalMs: 15 * 60 * 1000,
		PublicAddress:     "AA:BB:CC:DD:EE:FF",
		IRKHex:            "000102030405060708090a0b0c0d0e0f",
	}
}

// DefaultPath resolves the default config file path under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load reads and parses the YAML config at path. A missing file is
// reported as the unchanged read error; callers that want
// defaults-on-missing should check os.IsNotExist themselves and fall
// back to Default().
func Load(path string) (Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// IRK decodes the configured IRK hex string into a 16-byte array.
func (c Config) IRK() ([16]byte, error) {
	var irk [16]byte

	raw, err := hex.DecodeString(c.IRKHex)
	if err != nil {
		return irk, errors.Wrap(err, "decode irk hex")
	}
	if len(raw) != 16 {
		return irk, fmt.Errorf("irk must be 16 bytes, got %d", len(raw))
	}

	copy(irk[:], raw)
	return irk, nil
}

// PrivacyInterval returns the configured RPA rotation period as a
// time.Duration.
func (c Config) PrivacyInterval() time.Duration {
	return time.Duration(c.PrivacyIntervalMs) * time.Millisecond
}

// ApplyOverride coerces a raw "--set key=value" style CLI override onto
// cfg using spf13/cast, the way a loosely-typed flag value gets coerced
// into a config struct field without a full reflection-based unmarshal.
func (c *Config) ApplyOverride(key string, value interface{}) error {
	switch key {
	case "inst_count":
		n, err := cast.ToUint8E(value)
		if err != nil {
			return errors.Wrap(err, "inst_count")
		}
		c.InstanceCount = n
	case "privacy_enabled":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return errors.Wrap(err, "privacy_enabled")
		}
		c.PrivacyEnabled = b
	case "privacy_interval_ms":
		n, err := cast.ToIntE(value)
		if err != nil {
			return errors.Wrap(err, "privacy_interval_ms")
		}
		c.PrivacyIntervalMs = n
	case "public_address":
		c.PublicAddress = cast.ToString(value)
	case "irk":
		c.IRKHex = cast.ToString(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
