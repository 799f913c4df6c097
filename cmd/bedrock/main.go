package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		runServe()
	case "render":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: bedrock render <file|->")
			os.Exit(1)
		}
		if err := runRender(os.Args[2], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("bedrock %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bedrock - the public site of an independent publication, served from a headless CMS

Usage:
  bedrock [command] [arguments]

Commands:
  serve           Start the web server (default)
  render <file>   Render a post or rich-text document JSON file to HTML ("-" reads stdin)
  version         Print the bedrock version
  help            Show this help message

Environment:
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, SITE_PUBLISHER, ADDR,
  CMS_URL, CMS_TIMEOUT, REDIS_URL, CACHE_TTL, POST_CACHE_TTL,
  FEED_SIZE, PAGE_SIZE, SEARCH_LIMIT, SECTIONS,
  SESSION_SECRET (required), COOKIE_SECURE

Examples:
  bedrock
  CMS_URL=https://cms.example.com bedrock render post.json`)
}
