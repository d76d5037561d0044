package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shortlyhq/shortly/pkg/adapters/repository/sqlite"
	"github.com/shortlyhq/shortly/pkg/config"
	"github.com/shortlyhq/shortly/pkg/core/domain"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}

	cfg := config.Load()
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(repo)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(repo, *importFile)
	default:
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}
}

// doExport writes every link to stdout, soft-deleted rows included, so a
// restore keeps dead codes reserved.
func doExport(repo *sqlite.SQLiteRepository) {
	links, err := repo.Dump(context.Background())
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}

func doImport(repo *sqlite.SQLiteRepository, filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	var links []domain.Link
	if err := json.NewDecoder(file).Decode(&links); err != nil {
		log.Fatalf("Decode failed: %v", err)
	}

	ctx := context.Background()
	count := 0
	for i := range links {
		l := links[i]
		err := repo.Insert(ctx, &l)
		if errors.Is(err, domain.ErrDuplicateCode) {
			log.Printf("Skipping existing code: %s", l.ShortCode)
			continue
		}
		if err != nil {
			log.Printf("Failed to import %s: %v", l.ShortCode, err)
			continue
		}
		// Insert only writes active columns; restore the deletion mark so an
		// imported dead code stays dead.
		if l.DeletedAt != nil {
			if err := repo.SoftDelete(ctx, l.ShortCode); err != nil {
				log.Printf("Failed to mark %s deleted: %v", l.ShortCode, err)
			}
		}
		count++
	}
	log.Printf("Imported %d links", count)
}
