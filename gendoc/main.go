// Command gendoc writes one markdown page per yz command.
//
//	go run ./gendoc [output dir]
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/youzi20/yz-cli/cmd"
)

func main() {
	outputDir := "docs"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating %s: %v", outputDir, err)
	}
	if err := doc.GenMarkdownTree(cmd.RootCmd, outputDir); err != nil {
		log.Fatalf("Error generating documentation: %v", err)
	}
	log.Printf("Documentation generated in %s", outputDir)
}
