// Command rigiddemo drops a stack of boxes on a floor and prints where they
// come to rest.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/setanarut/rigid"
	"github.com/setanarut/rigid/config"
	"github.com/setanarut/rigid/geom"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		frames     = flag.Int("frames", 600, "frames to simulate")
		boxes      = flag.Int("boxes", 3, "boxes in the stack")
		fps        = flag.Float64("fps", 60, "frame rate fed to Update")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *configPath, *frames, *boxes, *fps); err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, frames, boxes int, fps float64) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	counter := &rigid.StepCounter{}
	opts := append(cfg.Engine.Options(), rigid.WithLogger(logger), rigid.WithMetrics(counter))
	engine, err := rigid.NewEngine(opts...)
	if err != nil {
		return err
	}

	floorMat := cfg.Material("floor")
	floorMat.Fixed = true
	floor, err := rigid.NewBoxBody(rigid.NewBB(geom.V(-10, -2, -10), geom.V(10, 0, 10)), floorMat.BodyDef())
	if err != nil {
		return err
	}
	if _, err := engine.AddBody(floor); err != nil {
		return err
	}

	boxMat := cfg.Material("box")
	for i := range boxes {
		y := 0.5 + float64(i)*1.5
		bb := rigid.NewBBForExtents(geom.V(0, y+0.5, 0), geom.V(0.5, 0.5, 0.5))
		box, err := rigid.NewBoxBody(bb, boxMat.BodyDef())
		if err != nil {
			return fmt.Errorf("box %d: %w", i, err)
		}
		if _, err := engine.AddBody(box); err != nil {
			return err
		}
	}

	for range frames {
		engine.Update(1 / fps)
	}

	logger.Info("simulation done", "steps", counter.Steps, "contacts", counter.Total.Contacts,
		"time", counter.Total.Duration)
	engine.EachBody(func(body *rigid.Body) {
		rot, pos := body.Transform()
		fmt.Printf("%v fixed=%v pos=%v rot=%v vel=%v\n", body.ID(), body.Fixed(), pos, rot, body.Velocity())
	})
	return nil
}
