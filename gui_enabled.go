//go:build gui

package main

import (
	"runtime"

	"chekinn/gui"
)

var guiApp *gui.App

func initGUI() {
	// Lock this goroutine to the OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	sink.setIndicator(guiApp)
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}
