package main

import (
	"github.com/kiosk404/loamy/internal/loamyctl/cmd"
	"github.com/kiosk404/loamy/internal/loamyctl/cmd/util"
)

func main() {
	util.CheckErr(cmd.NewDefaultLoamyCtlCommand().Execute())
}
