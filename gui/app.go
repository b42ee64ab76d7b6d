//go:build gui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App is a small always-on-top indicator window that mirrors the voice
// pipeline state while the terminal UI may be in the background. Hidden
// at idle, shown from the first recording on.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	dot     *Indicator
	onReady func()
	posX    int
	posY    int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.chekinn.indicator")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("chekinn",
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(theme.MediaRecordIcon())
	}

	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	// Frameless splash window so the indicator floats without chrome
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("chekinn")
	}

	a.dot = NewIndicator()
	a.window.SetContent(a.dot)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	size := a.dot.MinSize()
	a.window.Resize(size)

	// Bottom center, above the dock
	a.posX = (screenW - int(size.Width)) / 2
	a.posY = screenH - int(size.Height) - 20

	go a.onReady()

	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

// Stage updates run off the Fyne thread; the indicator serializes
// internally.

func (a *App) RecordingStart() {
	a.dot.SetStage("recording")
	a.Show()
}

func (a *App) RecordingStop() {
	a.dot.SetStage("")
}

func (a *App) Working(label string) {
	a.dot.SetStage(label)
	a.Show()
}

func (a *App) Idle() {
	a.dot.SetStage("")
	a.Hide()
}
