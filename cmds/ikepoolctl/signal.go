// Copyright 2018-present the CoreDHCP Authors. All rights reserved
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/AnandBibhuti/ikepool/addresspool"
	"github.com/AnandBibhuti/ikepool/config"
	"github.com/AnandBibhuti/ikepool/logger"
)

// watchSIGHUP mirrors the teacher's plugin-refresh-on-SIGHUP idiom, adapted
// from "re-run every plugin's Refresh4/6" to "dump every pool's current
// occupancy" -- there is no pluggable-middleware concept in this domain to
// refresh, but an operator-triggered stats dump serves the same
// "SIGHUP means: tell me what's going on right now" daemon convention.
func watchSIGHUP(cfg *config.Config, registry *addresspool.Registry) {
	log := logger.GetLogger("main")
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGHUP)

	go func() {
		for range signalCh {
			log.Info("received SIGHUP, dumping pool stats")
			runStats(cfg, registry)
		}
	}()
}
