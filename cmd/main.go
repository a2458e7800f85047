package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vidscholar/vidscholar-backend/internal/app"
)

func main() {
	// Missing .env is fine in containers; real env vars win either way.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		application.Log.Error("Server exited", "error", err)
		application.Close()
		os.Exit(1)
	}
}
