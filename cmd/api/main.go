package main

import (
	"log"

	"github.com/gb112302/agriconnect/internal/app"
	"github.com/gb112302/agriconnect/internal/app/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	application.Run()
}
