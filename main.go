package main

import (
	"github.com/WeSplit-io/WeSplit-Backend/api"
)

var envPath string = "."

func main() {
	server := api.NewServer(envPath)
	server.Start()
}
