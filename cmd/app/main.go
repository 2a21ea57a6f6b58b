package main

import (
	"fmt"
	"os"
)

// @title FitBook API
// @version 1.0
// @description Fitness session marketplace: businesses, sessions, trainers and bookings.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
