// Package compileinfoprint is imported by commands for the side effect of
// printing their build provenance to stderr at start-up.
package compileinfoprint

import "github.com/carbocation/growthcurve/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
