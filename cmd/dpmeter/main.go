package main

import (
	"flag"
	"log"

	"github.com/FrancescoCeruti/dpmeter/internal/config"
	"github.com/FrancescoCeruti/dpmeter/internal/meterapp"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (defaults to the user config dir)")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			log.Fatalf("resolve config path: %v", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config %s: %v", path, err)
	}

	app, err := meterapp.New(cfg)
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	app.Run()
}
