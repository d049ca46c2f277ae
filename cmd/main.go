package main

import (
	"context"
	"log"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/app"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
