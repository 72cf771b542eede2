package main

import (
	"log"

	"github.com/ds124wfegd/electrorescue/config"
	"github.com/ds124wfegd/electrorescue/internal/appServer"
)

func main() {
	v, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to read config: %v", err)
	}

	cfg, err := config.ParseConfig(v)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
	}

	appServer.NewServer(cfg)
}
