// Command matchctl ranks pool files offline, generates synthetic pools and
// submits pools to a running matching service.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
