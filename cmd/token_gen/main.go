package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/config"
)

// token_gen prints a bearer token for the ops API, signed with the configured
// ops.jwt_secret.
func main() {
	defaultConfig := os.Getenv("CONFIG")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}

	configPath := flag.String("config", defaultConfig, "path to the YAML config file (env CONFIG)")
	operator := flag.String("operator", "", "name of the token holder")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	if *operator == "" {
		log.Fatal("-operator is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	token, err := common.NewTokenSigner([]byte(cfg.Ops.JWTSecret)).Issue(*operator, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
