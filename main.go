package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/wavetrail/internal/config"
	"github.com/olivier-w/wavetrail/internal/media"
	"github.com/olivier-w/wavetrail/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("wavetrail", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	fps := fs.Int("fps", 0, "frames per second (overrides the config file)")
	stars := fs.Bool("stars", false, "draw the starfield behind the trail")
	debug := fs.Bool("debug", false, "write a debug log to wavetrail-debug.log")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: wavetrail [flags] [file]\n\nPlays %s files or .m3u/.pls playlists.\nWithout a file, a browser of the current directory opens.\n\n", media.SupportedExtsList())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *debug {
		f, err := tea.LogToFile("wavetrail-debug.log", "wavetrail")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fps":
			cfg.FPS = *fps
		case "stars":
			cfg.Stars = *stars
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Printf("config: %+v", cfg)

	opts := ui.Options{
		FPS:    cfg.FPS,
		Visual: cfg.Visual(),
		Volume: cfg.InitialVolume,
	}

	var model tea.Model
	if fs.NArg() == 0 {
		model = newStartupModel(opts)
	} else {
		pm, err := buildPlaybackModel(fs.Arg(0), opts)
		if err != nil {
			return err
		}
		model = pm
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
