package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "event":
		err = runEvent(os.Args[2:])
	case "version":
		fmt.Printf("pulseboard %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pulseboard - A console for querying and feeding an analytics API

Usage:
  pulseboard <command> [arguments]

Commands:
  serve [-config file]                     Run the web console
  stats -site <id> [-date YYYY-MM-DD]      Print the stats of a site
  event -site <id> -type <type> [-path p] [-user u]
                                           Submit one event
  version                                  Print the pulseboard version
  help                                     Show this help message

stats and event accept -api <url> (default $PULSEBOARD_API_BASE_URL or
http://localhost:5000) and -timeout <duration>.

Examples:
  pulseboard serve -config pulseboard.yaml
  pulseboard stats -site acme -date 2024-03-01
  pulseboard event -site acme -type pageview -path /pricing`)
}
