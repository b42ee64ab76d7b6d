package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"chekinn/api"
	"chekinn/audio"
	"chekinn/beep"
	"chekinn/doctor"
	"chekinn/encoder"
	"chekinn/hotkey"
	"chekinn/log"
	"chekinn/store"
	"chekinn/update"
	"chekinn/voice"
)

var version = "dev"

const defaultBackendURL = "http://localhost:8001"

// sink is shared with the GUI build so the indicator window can hook in
// before run() wires the rest.
var sink = &uiSink{}

var tuiProgram *tea.Program
var tuiMu sync.Mutex

var shutdownOnce sync.Once

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if n := sink.completedTurns(); n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func backendURL() string {
	if url := os.Getenv("CHEKINN_BACKEND_URL"); url != "" {
		return url
	}
	return defaultBackendURL
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		if version == "dev" {
			fmt.Println("Dev build, cannot check for updates.")
			os.Exit(0)
		}
		fmt.Printf("chekinn %s, checking for updates...\n", version)
		rel, err := update.CheckLatest(version)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if rel == nil {
			fmt.Println("Already up to date.")
			os.Exit(0)
		}
		fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
		fmt.Print("Continue? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			os.Exit(0)
		}
		fmt.Printf("Downloading %s...\n", rel.Version)
		if err := update.Apply(rel); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated to %s\n", rel.Version)
		os.Exit(0)
	}

	// Optional .env for local development (backend URL etc.)
	godotenv.Load()

	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	voiceFlag := flag.String("voice", "alloy", "Synthesis voice for spoken replies")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for push-to-talk vs tap")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	dataDirFlag := flag.String("datadir", "", "profile directory path (default: OS-specific location)")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Bool("indicator", false, "Show floating status indicator (requires gui build)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("chekinn %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(backendURL()))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(backendURL(), audio.Backend())
	}

	st, err := store.New(*dataDirFlag)
	if err != nil {
		fmt.Printf("Error: profile store init: %v\n", err)
		os.Exit(1)
	}
	profile, err := st.Load()
	if err != nil {
		log.Warnf("profile load: %v", err)
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := actx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(actx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		log.Warn("bluetooth microphone selected, capture quality may suffer")
	}

	captureConfig := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
	captureDevice, err := actx.NewCapture(selectedDevice, captureConfig)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	playbackDevice, err := actx.NewPlayback()
	if err != nil {
		log.Errorf("playback device init error: %v", err)
		fmt.Printf("Error initializing playback device: %v\n", err)
		os.Exit(1)
	}
	defer playbackDevice.Close()

	sink.setBeeper(beep.New(actx))

	client := api.New(backendURL())
	gate := voice.NewDeviceGate(actx)
	recorder := voice.NewRecorder(gate, captureDevice)
	player := voice.NewPlayer(playbackDevice)

	userID := ""
	if profile != nil {
		userID = profile.UserID
	}
	orch := voice.NewOrchestrator(userID, client, gate, recorder, voice.NewPayloadEncoder(), player, sink, *voiceFlag)
	defer orch.Close()

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(newModel(client, st, orch, profile))
	p := tuiProgram
	tuiMu.Unlock()
	sink.attach(p)

	go func() {
		if _, err := p.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
	}()

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Info("update_available: " + rel.Version)
		sink.send(updateAvailableMsg{Version: rel.Version})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		gracefulShutdown()
	}()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Warning: global hotkey unavailable: %v\n", err)
		fmt.Println("Use ctrl+r inside the app to record.")
		select {}
	}
	defer hk.Unregister()

	toggle := hotkey.NewToggle(hk, *longPressFlag)
	defer toggle.Close()

	for range toggle.Toggles() {
		log.Info("hotkey_toggle")
		orch.ToggleMic(context.Background())
	}
}
