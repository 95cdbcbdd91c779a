// rein-cli verifies signed Rein documents and inspects the node's orders and blocks.
package main

import "github.com/rein-network/rein-node/internal/cli"

func main() {
	cli.Execute()
}
