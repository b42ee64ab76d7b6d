//go:build !gui

package main

func initGUI() {
	panic("chekinn: built without GUI support (rebuild with -tags gui)")
}
