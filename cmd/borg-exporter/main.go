package main

import (
	"os"

	cmd "github.com/MrSnakeDoc/borg-exporter/internal"
	"github.com/MrSnakeDoc/borg-exporter/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.LogError("%s", err.Error())
		logger.Sync()
		os.Exit(1)
	}
}
