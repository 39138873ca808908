package main

import (
	"signalhound/cmd/handlers"
	"signalhound/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
