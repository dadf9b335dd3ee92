// Command chessview is a terminal client for a chess analysis server: it
// shows the live board, engine evaluation and move tree, and drives the
// game with moves, navigation and new PGN uploads.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
