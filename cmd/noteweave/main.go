// cmd/noteweave/main.go
package main

import (
	cmd "github.com/mwiater/noteweave/internal/cli"
)

// main starts the noteweave CLI application by delegating to the
// cobra root command defined in the noteweave package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
