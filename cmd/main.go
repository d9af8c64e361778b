package main

import (
	"log"
	"os"

	// Load .env before the function package's init runs.
	_ "github.com/joho/godotenv/autoload"

	// Blank-import the function package so the init() runs.
	_ "eventease/backend"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
)

// main starts the Functions Framework server, only needed when running
// locally.
func main() {
	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}

	log.Println("Server starting on http://127.0.0.1:" + port)
	log.Println("Swagger UI: http://127.0.0.1:" + port + "/swagger/index.html")

	if err := funcframework.StartHostPort(hostname, port); err != nil {
		log.Fatalf("funcframework.StartHostPort: %v\n", err)
	}
}
