// Package compileinfo reports which build of a growthcurve tool produced a
// result, so that stats files and charts can be traced back to code.
package compileinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

type CompileInfo struct {
	Tool       string
	Module     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

// ShortCommit is the first 12 characters of the revision.
func (c CompileInfo) ShortCommit() string {
	if len(c.Commit) > 12 {
		return c.Commit[:12]
	}

	return c.Commit
}

func (c CompileInfo) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s", c.Tool)
	if c.Module != "" {
		fmt.Fprintf(&b, " (%s", c.Module)
		if c.Version != "" && c.Version != "(devel)" {
			fmt.Fprintf(&b, " %s", c.Version)
		}
		b.WriteString(")")
	}

	if c.GoVersion != "" {
		fmt.Fprintf(&b, " built with %s", c.GoVersion)
	}

	if c.Commit == "" {
		b.WriteString(" from an unknown commit.")
		return b.String()
	}

	fmt.Fprintf(&b, " at commit %s", c.ShortCommit())
	if c.CommitTime != "" {
		fmt.Fprintf(&b, " (%s)", c.CommitTime)
	}
	b.WriteString(".")

	if c.Modified {
		b.WriteString(" The working tree had uncommitted changes.")
	}

	return b.String()
}

func Get() CompileInfo {
	out := CompileInfo{Tool: filepath.Base(os.Args[0])}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	fmt.Fprintln(os.Stderr, Get())
}
