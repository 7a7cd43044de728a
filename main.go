package main

import (
	"runtime/debug"

	"github.com/gigurra/stillalive/cmd/check"
	"github.com/gigurra/stillalive/cmd/play"
	"github.com/gigurra/stillalive/cmd/timeline"
)

func main() {
	play.Cmd(appVersion(),
		timeline.Cmd(),
		check.Cmd(),
	).Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
