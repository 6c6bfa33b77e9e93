// Package main implements the tetrisenv executable: it runs a Game Boy
// cartridge headless, in a window, in the terminal or under a Lua agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tetrisenv/internal/app"
	"tetrisenv/internal/graphics"
	"tetrisenv/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to the cartridge image (.gb, or a .zip/.7z/.rar/.gz archive)")
		configFile = flag.String("config", "", "Path to configuration file")
		frames     = flag.Int("frames", 600, "Frames to run headless, or the frame limit of a script")
		play       = flag.Bool("play", false, "Open a window and play with the keyboard")
		terminal   = flag.Bool("terminal", false, "Render to the terminal")
		scriptFile = flag.String("script", "", "Drive the environment with a Lua script")
		screenshot = flag.String("screenshot", "", "Write the final frame to this PNG file")
		seed       = flag.Uint64("seed", 0, "Seed of the first episode")
		profiles   = flag.String("profiles", "", "JSON cartridge profile table replacing the built-in one")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		showVer    = flag.Bool("version", false, "Show version information")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		version.PrintBuildInfo(os.Stdout)
		os.Exit(0)
	}
	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "tetrisenv: -rom is required")
		printUsage()
		os.Exit(2)
	}
	if *play && *terminal {
		log.Fatal("-play and -terminal are mutually exclusive")
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			config.Emulation.Frames = *frames
		case "seed":
			config.Emulation.Seed = *seed
		case "profiles":
			config.Emulation.ProfilesPath = *profiles
		}
	})
	switch {
	case *play:
		config.Video.Backend = string(graphics.BackendEbitengine)
	case *terminal:
		config.Video.Backend = string(graphics.BackendTerminal)
	case *scriptFile != "" && config.Video.Backend == string(graphics.BackendEbitengine):
		// Scripts drive the frame loop themselves
		config.Video.Backend = string(graphics.BackendHeadless)
	}
	if *debug {
		config.Debug.EnableLogging = true
		config.Debug.LogLevel = "DEBUG"
		config.Debug.ShowFPS = true
	}

	application, err := app.NewApplicationWithConfig(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, application, *romFile, *scriptFile, *screenshot)
	if cerr := application.Cleanup(); cerr != nil {
		log.Printf("Application cleanup error: %v", cerr)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, application *app.Application, romFile, scriptFile, screenshot string) error {
	if err := application.LoadROM(romFile); err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	// Interactive loops are not context aware; an interrupt ends the process
	if scriptFile == "" {
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nInterrupt received, shutting down")
			os.Exit(130)
		}()
	}

	var err error
	if scriptFile != "" {
		err = application.RunScript(ctx, scriptFile)
	} else {
		err = application.Run()
	}
	if err != nil {
		return err
	}

	if screenshot != "" {
		if err := application.SaveScreenshot(screenshot); err != nil {
			return fmt.Errorf("failed to save screenshot: %w", err)
		}
	}

	printSummary(application)
	return nil
}

func printSummary(application *app.Application) {
	env := application.Environment()
	episode, err := env.Frames()
	if err != nil {
		return
	}
	fmt.Printf("Frames:  %d (episode %d)\n", application.GetFrameCount(), episode)
	if view, err := env.View(); err == nil {
		fmt.Printf("Score:   %d\n", view.Score)
		fmt.Printf("Lines:   %d\n", view.Lines)
	}
	fmt.Printf("Running: %t\n", env.IsRunning())
}

func printUsage() {
	fmt.Println("tetrisenv - Game Boy learning environment")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  tetrisenv -rom <file> [options]                # Run headless")
	fmt.Println("  tetrisenv -rom <file> -play                    # Play in a window")
	fmt.Println("  tetrisenv -rom <file> -script agent.lua        # Run a Lua agent")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default, see input.keys in the config):")
	fmt.Println("  Arrow Keys        - D-Pad")
	fmt.Println("  X                 - A Button")
	fmt.Println("  Z                 - B Button")
	fmt.Println("  Enter             - Start")
	fmt.Println("  Backspace         - Select")
	fmt.Println("  P                 - Pause")
	fmt.Println("  R                 - New episode")
	fmt.Println("  F12               - Screenshot")
	fmt.Println("  Escape            - Quit")
	fmt.Println()
	fmt.Printf("CONFIGURATION:\n  Config file: %s\n", app.GetDefaultConfigPath())
}
