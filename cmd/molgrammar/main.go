package main

import (
	"os"

	"github.com/turtacn/MolGrammar-Learner/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
