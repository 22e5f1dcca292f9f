package main

import (
	"log"

	"github.com/richiexuetang/ritcher-map/internal/app"
	"github.com/richiexuetang/ritcher-map/pkg/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalln("failed to load config: ", err)
	}

	app.Run(cfg)
}
