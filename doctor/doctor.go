package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"chekinn/api"
	"chekinn/audio"
	"chekinn/clipboard"
	"chekinn/encoder"
	"chekinn/hotkey"
	"chekinn/voice"
)

// Run executes interactive diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run(backendURL string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("chekinn doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true

	if !checkBackend(backendURL) {
		allPass = false
	}
	if !checkMicrophone() {
		allPass = false
	}
	if allPass && !checkHotkey() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkBackend(backendURL string) bool {
	fmt.Println()
	fmt.Println("[1/4] Backend connection")
	fmt.Printf("Checking %s ...\n", backendURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := api.New(backendURL)
	if err := client.Health(ctx); err != nil {
		fmt.Printf("  FAIL: backend unreachable: %v\n", err)
		fmt.Println("  Is the server running? Set CHEKINN_BACKEND_URL if it lives elsewhere.")
		return false
	}
	fmt.Println("  PASS: backend is healthy")
	return true
}

func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[2/4] Microphone")

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	fmt.Printf("  Found %d capture device(s), default: %s\n", len(devices), devices[0].Name)

	gate := voice.NewDeviceGate(actx)
	status, err := gate.Request(context.Background())
	if err != nil {
		fmt.Printf("  FAIL: permission probe error: %v\n", err)
		return false
	}
	if status != voice.PermissionGranted {
		fmt.Println("  FAIL: microphone access denied. Check your system privacy settings.")
		return false
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	data, err := recordFor(actx, 3*time.Second)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(data) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  PASS: recorded %.1f KB of audio\n", float64(len(data))/1024)
	return true
}

func recordFor(actx audio.Context, d time.Duration) ([]byte, error) {
	var pcmBuf []byte
	var bufMu sync.Mutex

	config := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
	dev, err := actx.NewCapture(nil, config)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	dev.SetCallback(func(data []byte, frameCount uint32) {
		bufMu.Lock()
		pcmBuf = append(pcmBuf, data...)
		bufMu.Unlock()
	})
	if err := dev.Start(); err != nil {
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	timeout := time.After(d)
loop:
	for {
		select {
		case <-timeout:
			break loop
		case <-ticker.C:
			fmt.Print(".")
		}
	}
	ticker.Stop()
	dev.Stop()
	fmt.Println(" done")

	bufMu.Lock()
	defer bufMu.Unlock()
	return pcmBuf, nil
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[3/4] Hotkey detection")

	hk := hotkey.New()
	fmt.Printf("Press %s...\n", hk.Combo())
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// The hotkey backend may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/4] Clipboard")

	if !clipboard.Available() {
		fmt.Println("  FAIL: no clipboard tool found (install xclip, xsel or wl-clipboard)")
		return false
	}

	testStr := "chekinn-doctor-test"
	if err := clipboard.Copy(testStr); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if !strings.Contains(got, testStr) {
		fmt.Printf("  FAIL: clipboard round trip mismatch (got %q)\n", got)
		return false
	}
	fmt.Println("  PASS: clipboard round trip verified")
	return true
}
