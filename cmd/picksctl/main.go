// Command picksctl classifies series predictions offline, reads the NHL feed
// and drives a running picks server with simulated users.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
