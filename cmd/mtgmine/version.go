package main

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/urfave/cli/v3"
)

type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	BuildTime string
	Modified  bool
}

// readBuildInfo reports what the Go toolchain stamped into the binary.
// Fields it did not stamp read "unknown".
func readBuildInfo() buildInfo {
	bi := buildInfo{Version: "unknown", GoVersion: "unknown", Commit: "unknown", BuildTime: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}

	bi.Version = info.Main.Version
	bi.GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Commit = setting.Value
		case "vcs.time":
			bi.BuildTime = setting.Value
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}
	return bi
}

func (bi buildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mtgmine %s (%s)", bi.Version, bi.GoVersion)
	if bi.Commit != "unknown" {
		fmt.Fprintf(&sb, "\ncommit: %s", bi.Commit)
		if bi.Modified {
			sb.WriteString(" (dirty)")
		}
	}
	if bi.BuildTime != "unknown" {
		fmt.Fprintf(&sb, "\nbuilt: %s", bi.BuildTime)
	}
	return sb.String()
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "short", Usage: "Print the version number only"},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		bi := readBuildInfo()
		if command.Bool("short") {
			fmt.Println(bi.Version)
			return nil
		}
		fmt.Println(bi)
		return nil
	},
}
