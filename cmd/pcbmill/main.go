// Command pcbmill turns board scripts into isolation milling, NCC, drill
// and cutout geometry.
package main

import "github.com/chazu/pcbmill/cmd/pcbmill/cmd"

func main() {
	cmd.Execute()
}
