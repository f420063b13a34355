package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pwnholic/plotbook/internal"
)

type Flag struct {
	Input         string
	BookID        string
	BookRefs      []string // ids or .json paths read from the batch file
	BatchFile     string
	APIURL        string
	OutputDir     string
	CoverImage    string
	ConfigPath    string
	ServeAddr     string
	LogLevel      string
	MaxConcurrent int
	Force         bool
}

func parseFlag() *Flag {
	help := flag.Bool("h", false, "Display this help message and exit")
	flag.BoolVar(help, "help", false, "Alias for -h")
	input := flag.String("i", "", `Path to a book JSON document (e.g. "books/silent-valley.json")`)
	bookID := flag.String("id", "", `Book id to fetch from the generator API`)
	batchFile := flag.String("b", "", `Path to file containing book ids or .json paths (one per line)`)
	apiURL := flag.String("api", "", `Generator API base URL (overrides api.base_url)`)
	outputDir := flag.String("o", "books", `Directory the PDF files are written to`)
	cover := flag.String("cover", "", `Cover image (JPEG, PNG or WebP) drawn under the title`)
	configPath := flag.String("c", "", `Path to YAML config file`)
	serve := flag.String("serve", "", `Run the HTTP export server on this address (e.g. ":8080")`)
	logLevel := flag.String("log", "", `Log level: debug, info, warn, error (overrides log.level)`)
	maxConcurrent := flag.Int("x", 4, `Maximum concurrent exports in batch mode`)
	force := flag.Bool("f", false, `Overwrite PDF files that already exist`)

	flag.Parse()

	if *help {
		fmt.Println("plotbook - Export generated books to PDF")
		fmt.Println("Usage: `plotbook -i <book.json>`, `plotbook -id <id>`, `plotbook -b <file>` or `plotbook -serve :8080`")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Export a local document: -i silent-valley.json -o out")
		fmt.Println("  Export from the generator: -api https://plots.example.com -id clx1f0a2")
		fmt.Println("  Export many books: -b ids.txt -x 8 -f")
		fmt.Println("  Serve exports over HTTP: -serve :8080 -c plotbook.yaml")
		os.Exit(0)
	}

	modes := 0
	for _, set := range []bool{*input != "", *bookID != "", *batchFile != "", *serve != ""} {
		if set {
			modes++
		}
	}
	if modes == 0 {
		fmt.Println("One of -i, -id, -b or -serve is required")
		os.Exit(1)
	}
	if modes > 1 {
		internal.Error("-i, -id, -b and -serve cannot be combined")
		os.Exit(1)
	}

	var refs []string
	if *batchFile != "" {
		var err error
		refs, err = readBatchFile(*batchFile)
		if err != nil {
			internal.Error("Error reading batch file: %v", err)
			os.Exit(1)
		}
		if len(refs) == 0 {
			internal.Error("Batch file is empty or contains no book references")
			os.Exit(1)
		}
	}

	if *maxConcurrent < 1 {
		internal.Error("Concurrency value (-x) must be >= 1")
		os.Exit(1)
	}

	return &Flag{
		Input:         *input,
		BookID:        *bookID,
		BookRefs:      refs,
		BatchFile:     *batchFile,
		APIURL:        *apiURL,
		OutputDir:     *outputDir,
		CoverImage:    *cover,
		ConfigPath:    *configPath,
		ServeAddr:     *serve,
		LogLevel:      *logLevel,
		MaxConcurrent: *maxConcurrent,
		Force:         *force,
	}
}

// readBatchFile returns the non-empty, non-comment lines of path.
func readBatchFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var refs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	return refs, scanner.Err()
}
