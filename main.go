// Command eureka is the CLI entry point; see cmd/root.go for the
// verb tree (ingest, identify, records).
package main

import "github.com/media-luna/eureka/cmd"

func main() {
	cmd.Execute()
}
