package main

import (
	"log"

	"CourseBridge/config"
	"CourseBridge/internal/app"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	app.Run(cfg)
}
