package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/imageload"
	"github.com/1broseidon/imgoverlay/internal/notify"
	"github.com/1broseidon/imgoverlay/internal/overlay"
	"github.com/1broseidon/imgoverlay/internal/palette"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/settings"
	"github.com/1broseidon/imgoverlay/internal/window"
	"github.com/fatih/color"
)

var (
	colorError = color.New(color.FgRed, color.Bold).SprintFunc()
	colorOK    = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runOverlay(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runOverlay(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		// Bare flags or an image path mean "run".
		os.Exit(runOverlay(os.Args[1:]))
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imgoverlay [run] [options] [image]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the overlay window (default)")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the default config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'imgoverlay <command> --help' for command-specific options.")
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, colorError("error:"), err)
}

// exitCodeFor returns 2 for invalid configuration and 1 otherwise.
func exitCodeFor(err error) int {
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		return 2
	}
	return 1
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}

func runOverlay(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/imgoverlay/config.yaml)")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: imgoverlay run [-config PATH] [-v] [image]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the overlay window, optionally showing image.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "run takes at most one image")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*configPath)
	if err != nil {
		printError(err)
		return exitCodeFor(err)
	}
	cfg := res.Config

	level := cfg.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if res.File != "" {
		logger.Debug("configuration loaded", "file", res.File)
	}

	theme, err := cfg.UITheme()
	if err != nil {
		printError(err)
		return 2
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		printError(err)
		return 1
	}
	defer backend.Disconnect()

	var prompter overlay.Prompter
	if pb, err := palette.NewBackend(cfg.Palette.Backend); err != nil {
		logger.Warn("context menu disabled", "err", err)
	} else {
		picker := palette.NewPicker(pb)
		picker.Extensions = imageload.Extensions
		prompter = picker
	}

	notifier := notify.New(cfg.Notifications, "imgoverlay", logger)
	if c, ok := notifier.(io.Closer); ok {
		defer c.Close()
	}

	registry := settings.NewRegistry(backend, settings.Options{
		Theme:      theme,
		Width:      cfg.Settings.Width,
		Height:     cfg.Settings.Height,
		SliderMin:  cfg.Settings.TransparencyMin,
		SliderStep: cfg.Settings.TransparencyStep,
		Logger:     logger,
	})

	ov, err := overlay.New(backend, overlay.Options{
		Theme:  theme,
		Bounds: platform.Rect{Width: cfg.Window.Width, Height: cfg.Window.Height},
		Appearance: window.Appearance{
			Transparency: cfg.Window.Transparency,
			AlwaysOnTop:  cfg.Window.AlwaysOnTop,
			Decorated:    cfg.Window.Decorated,
			Fullscreen:   cfg.Window.Fullscreen,
		},
		MinVisible:    cfg.Window.MinVisible,
		SnapThreshold: cfg.Window.SnapThreshold,
		ImageDir:      cfg.Palette.ImageDir,
		Prompter:      prompter,
		Notifier:      notifier,
		Settings:      registry,
		Logger:        logger,
	})
	if err != nil {
		printError(err)
		return 1
	}

	if fs.NArg() == 1 {
		if err := ov.LoadImage(fs.Arg(0)); err != nil {
			printError(err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %s, shutting down imgoverlay...", sig)
		os.Exit(0)
	}()

	logger.Info("entering event loop")
	backend.EventLoop()
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  imgoverlay config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  imgoverlay config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  imgoverlay config path")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/imgoverlay/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			printError(err)
			return exitCodeFor(err)
		}
		if res.File == "" {
			fmt.Println(colorOK("config: ok"), "(no file, using defaults)")
		} else {
			fmt.Println(colorOK("config: ok"), res.File)
		}
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/imgoverlay/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				printError(err)
				return exitCodeFor(err)
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			printError(err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			printError(err)
			return 1
		}
		fmt.Println(p)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
