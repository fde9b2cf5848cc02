package main

import (
	"os"

	"github.com/prangggshu/legal-chatbot/cmd/legalctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
