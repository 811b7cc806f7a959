// Agilerisk serves sprint delay-risk predictions.
package main

import (
	"fmt"
	"os"

	"github.com/JorjanDorjan/ML-for-agile-methodology/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
