package main

import (
	"log"

	"github.com/anoixa/image-forge/cmd"
	"github.com/anoixa/image-forge/config"
)

func main() {
	log.Printf("image forge %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
