// Command clockctl prints clock readings and dial layouts computed by the
// same engine the service uses, and renders dial snapshots to PNG files.
//
// Usage:
//
//	clockctl reading [--at 2026-10-14T13:05:09Z] [--24h] [--locale de-DE] [--policy fixed] [--tz Europe/Berlin] [--json]
//	clockctl layout --diameter 300
//	clockctl snapshot --diameter 600 --out clock.png [--dark=false] [--at ...]
//	clockctl locales
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "clockctl:", err)
		os.Exit(1)
	}
}
