package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/min1324/lfstack/stress"
	log "github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
)

var (
	def       = stress.DefaultConfig()
	producers = flag.Int("producers", def.Producers, "producer goroutines")
	items     = flag.Int("items", def.Items, "values pushed by each producer, 0..items-1")
	consumers = flag.Int("consumers", def.Consumers, "consumer goroutines")
	impl      = flag.String("impl", def.Impl, "stack implementation, lockfree/mutex")
	timeout   = flag.Duration("timeout", def.Timeout, "whole run deadline")
	output    = flag.String("o", def.Output, `report target, The format is <type>:<params>.
type: default/file/single/cluster
- default: output to stdout
- file: append JSON lines to file, eg: file:out.jsonl
- single: store a hash in single redis, eg: single:127.0.0.1:6379
- cluster: store a hash in redis cluster, eg: cluster:127.0.0.1:7000,127.0.0.2:7000`)
	verbose = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := stress.Config{
		Producers: *producers,
		Items:     *items,
		Consumers: *consumers,
		Impl:      *impl,
		Timeout:   *timeout,
		Output:    *output,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	wr, err := stress.NewWriter(cfg.Output)
	if err != nil {
		log.Fatal(err)
	}
	defer wr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, runErr := stress.Run(ctx, cfg, log.StandardLogger())
	if rep != nil {
		if err := stress.WriteReport(wr, rep); err != nil {
			log.Error(err)
		}
	}
	if runErr != nil {
		wr.Close()
		log.Fatal(runErr)
	}
	if !rep.Empty {
		wr.Close()
		log.Fatal("stack not empty after every value was popped")
	}
}
