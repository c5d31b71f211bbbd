// Copyright 2018-present the CoreDHCP Authors. All rights reserved
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/AnandBibhuti/ikepool/addresspool"
	"github.com/AnandBibhuti/ikepool/config"
	"github.com/AnandBibhuti/ikepool/ident"
	"github.com/AnandBibhuti/ikepool/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var (
	flagLogFile     = pflag.String("logfile", "", "Name of the log file to append to. Default: stdout/stderr only")
	flagLogNoStdout = pflag.Bool("nostdout", false, "Disable logging to stdout/stderr")
	flagDebug       = pflag.Bool("debug", false, "Enable debug output")
	flagWatch       = pflag.Bool("watch", false, "Keep running and reload policy flags on config change")
)

func main() {
	pflag.Parse()
	log := logger.GetLogger("main")
	if *flagDebug {
		log.Logger.SetLevel(logrus.DebugLevel)
		log.Infof("Enabled debug logging")
	}
	if *flagLogFile != "" {
		log.Infof("Logging to file %s", *flagLogFile)
		if err := logger.WithFile(log, *flagLogFile); err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
	}
	if *flagLogNoStdout {
		log.Infof("Disabling logging to stdout/stderr")
		logger.WithNoStdOutErr(log)
	}

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ikepoolctl [flags] <install|stats|parse> [args]")
		os.Exit(2)
	}

	registry := addresspool.DefaultRegistry
	cfg, err := config.Load(registry)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch args[0] {
	case "install":
		runInstall(cfg)
	case "stats":
		runStats(cfg, registry)
	case "parse":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: ikepoolctl parse <identity-text>")
			os.Exit(2)
		}
		runParse(cfg, args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		os.Exit(2)
	}

	if *flagWatch {
		log.Info("Watching for configuration changes")
		watchSIGHUP(cfg, registry)
		for {
			time.Sleep(time.Second)
		}
	}
}

func runInstall(cfg *config.Config) {
	for _, p := range cfg.Pools {
		fmt.Printf("installed pool %q: %s-%s\n", p.Name, p.Start, p.End)
	}
}

// runParse parses text as a peer identity the way the daemon's connection
// configuration loader would, restricted by the daemon-wide oe_only policy
// flag -- the operator-facing way to check what a given identity string
// would resolve to under the currently loaded policy.
func runParse(cfg *config.Config, text string) {
	id, err := ident.Parse(text, cfg.OEOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid identity %q: %v\n", text, err)
		os.Exit(1)
	}
	fmt.Printf("%s -> kind=%s canonical=%q\n", text, id.Kind, id.String())
}

func runStats(cfg *config.Config, registry *addresspool.Registry) {
	for _, p := range cfg.Pools {
		pool, err := registry.Find(addresspool.Range{Start: p.Start, End: p.End})
		if err != nil || pool == nil {
			fmt.Printf("%s: not installed\n", p.Name)
			continue
		}
		stats := pool.Stats()
		fmt.Printf("%s: size=%d leases=%d in_use=%d reusable=%d free=%d\n",
			p.Name, stats.Size, stats.NrLeases, stats.NrInUse, stats.NrReusable, stats.NrFree)
	}
}
