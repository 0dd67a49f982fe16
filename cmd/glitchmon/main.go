// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command glitchmon runs a glitch monitor scenario: input lines driven by
// waveform patterns from a YAML file, with per-channel glitch reports read
// back over the simulated register bus.
package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/db47h/glitchmon"
	"github.com/db47h/glitchmon/internal/wave"
)

type lineConfig struct {
	// Name may declare a bus, e.g. "rx[3]"; every expanded line gets the
	// same pattern.
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type scenario struct {
	Channels int          `yaml:"channels"`
	Ticks    int          `yaml:"ticks"`
	Lines    []lineConfig `yaml:"lines"`
}

type drivenLine struct {
	name    string
	pattern []bool
}

func main() {
	cfgPath := pflag.StringP("config", "c", "", "scenario file (YAML)")
	ticks := pflag.IntP("ticks", "n", 0, "tick count, overrides the scenario")
	report := pflag.IntP("report", "r", 0, "emit a delta report every n ticks")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if *cfgPath == "" {
		logger.Fatal("no scenario file given, see -c")
	}

	sc, lines, err := loadScenario(*cfgPath)
	if err != nil {
		logger.Fatal("bad scenario", "err", err)
	}
	if *ticks > 0 {
		sc.Ticks = *ticks
	}

	if err = run(logger, sc, lines, *report); err != nil {
		logger.Fatal("scenario failed", "err", err)
	}
}

func loadScenario(path string) (*scenario, []drivenLine, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	sc := &scenario{}
	if err = yaml.Unmarshal(buf, sc); err != nil {
		return nil, nil, errors.Wrap(err, path)
	}

	var lines []drivenLine
	for _, l := range sc.Lines {
		names, err := wave.Expand(l.Name)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %q", l.Name)
		}
		p, err := wave.Parse(l.Pattern)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %q", l.Name)
		}
		for _, n := range names {
			lines = append(lines, drivenLine{name: n, pattern: p})
		}
	}
	if sc.Channels == 0 {
		sc.Channels = len(lines)
	}
	if len(lines) > sc.Channels {
		return nil, nil, errors.Errorf("%d lines driven but only %d channels configured",
			len(lines), sc.Channels)
	}
	if sc.Ticks <= 0 {
		sc.Ticks = 1
		for _, l := range lines {
			if len(l.pattern) > sc.Ticks {
				sc.Ticks = len(l.pattern)
			}
		}
	}
	return sc, lines, nil
}

func run(logger *log.Logger, sc *scenario, lines []drivenLine, report int) error {
	core, err := glitchmon.New(sc.Channels)
	if err != nil {
		return err
	}
	defer core.Dispose()

	logger.Debug("core up", "channels", sc.Channels, "ticks", sc.Ticks)

	var dr *glitchmon.DeltaReader
	if report > 0 {
		dr = glitchmon.NewDeltaReader(core)
	}

	levels := make([]bool, sc.Channels)
	for int(core.Ticks()) < sc.Ticks {
		t := int(core.Ticks())
		for i := range levels {
			levels[i] = false
			if i < len(lines) {
				levels[i] = wave.At(lines[i].pattern, t)
			}
		}
		core.Drive(levels...)
		core.Step()

		if dr != nil && (t+1)%report == 0 {
			diff := dr.Fetch()
			for i := 0; i < sc.Channels; i++ {
				if diff.Chan[i] != 0 {
					logger.Info("glitches", "tick", t+1, "line", lineName(lines, i), "new", diff.Chan[i])
				}
			}
		}
	}

	for i := 0; i < sc.Channels; i++ {
		count, _ := core.Read(glitchmon.CountReg(i))
		width, _ := core.Read(glitchmon.WidthReg(i))
		logger.Info("channel", "line", lineName(lines, i), "glitches", count, "last_width", width)
	}
	return nil
}

func lineName(lines []drivenLine, i int) string {
	if i < len(lines) {
		return lines[i].name
	}
	return "ch" + strconv.Itoa(i)
}
