// cubetac - tic-tac-toe on a Rubik's-style cube.
package main

import (
	"github.com/SeamusWaldron/cubetac/internal/cli"
)

func main() {
	cli.Execute()
}
