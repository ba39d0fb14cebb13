// Command histpath reconstructs the reading order of vertical, right-to-left
// OCR output.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
