// Command replwork queues and processes WAL replication work over NATS JetStream.
package main

import (
	"fmt"
	"os"

	"github.com/arloliu/replwork/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
