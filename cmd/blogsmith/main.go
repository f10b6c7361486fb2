package main

import (
	"blogsmith/cmd/handlers"
	"blogsmith/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
