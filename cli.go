//go:build cli
// +build cli

package main

import (
	"garment.GO/cmd"
	"garment.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
