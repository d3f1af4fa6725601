// Command provision runs one provisioning command and prints the result as
// JSON. It executes in-process by default or forwards to a running agent
// with --agent-addr.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
