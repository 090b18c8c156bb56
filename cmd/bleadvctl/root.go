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

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nimble-bt/bleadv/config"
)

var (
	cfgPath  string
	logLevel string

	sess *session
)

// Commands builds the bleadvctl command tree, grounded on
// newtmgr/cli/commands.go's Commands().
func Commands() *cobra.Command {
	root := &cobra.Command{
		Use:   "bleadvctl",
		Short: "Drive the multi-advertising manager against a simulated controller",
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: ~/.bleadvctl.yml)")
	root.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "info", "log level (debug, info, warn, error)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := newSession(cfg)
		if err != nil {
			return err
		}
		sess = s
		return nil
	}

	root.AddCommand(
		registerCmd(),
		unregisterCmd(),
		startCmd(),
		startSetCmd(),
		statusCmd(),
		dumpCmd(),
		shellCmd(),
	)

	return root
}

func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("bleadvctl: no config at %s, using defaults", path)
			return config.Default(), nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}
