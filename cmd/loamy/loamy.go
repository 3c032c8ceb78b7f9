package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/loamy/internal/loamy"
)

func main() {
	loamy.NewApp("loamy").Run()
}
