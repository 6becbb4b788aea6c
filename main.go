package main

import (
	"gocheckout/checkout"
	"gocheckout/server"
	"log"
)

func main() {

	system, err := server.NewCheckoutSystem(&checkout.Handlers{})
	if err != nil {
		log.Println("checkout system initialization failed", err)
		return
	}
	system.Start()

}
