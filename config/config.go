package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	GroqAPIKey  string
	GroqModel   string
	DatabaseURL string
	DataDir     string
	Port        string
}

// Load carrega as variaveis de ambiente do arquivo .env (se existir)
// e do ambiente do processo.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis do ambiente.")
	}

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Fatal("variável de ambiente GROQ_API_KEY não encontrada")
	}

	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		GroqAPIKey:  apiKey,
		GroqModel:   model,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     dataDir,
		Port:        port,
	}
}
