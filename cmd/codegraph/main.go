// Command codegraph is a thin cobra/viper shell over the host package: it
// owns no analysis logic of its own, only argument parsing and process
// wiring around host.Host.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
