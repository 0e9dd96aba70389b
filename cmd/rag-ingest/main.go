package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/futig/rag-chat/internal/builder"
)

func main() {
	// Parsed by config.LoadConfig together with -env.
	dir := flag.String("dir", ".", "Directory tree to index")

	ingestor, err := builder.BuildIngestor()
	if err != nil {
		log.Fatal("Failed to build ingestor:", err)
	}
	defer ingestor.Close()

	report, err := ingestor.Run(*dir)
	if err != nil {
		ingestor.Close()
		log.Fatal("Ingestion error:", err)
	}

	fmt.Printf("indexed=%d skipped=%d failed=%d truncated=%d\n",
		report.Indexed, report.Skipped, report.Failed, report.Truncated)
}
