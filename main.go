// The main package for the dado-stream executable.
package main

import (
	"github.com/pharaohanjay-gif/dado-stream/cmd"
)

func main() {
	cmd.Execute()
}
