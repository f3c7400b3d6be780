// Package main provides the CLI entry point for patchsubset.
//
// Usage:
//
//	patchsubset serve -config server.yaml
//	patchsubset fetch -server http://localhost:8080 -font Roboto-Regular.ttf -cps "a,b,c"
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/patchsub/patchsubset/client"
	"github.com/patchsub/patchsubset/font"
	"github.com/patchsub/patchsubset/internal/requestlog"
	"github.com/patchsub/patchsubset/internal/wire"
	"github.com/patchsub/patchsubset/server"
	"github.com/patchsub/patchsubset/transport"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		printVersion()
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`patchsubset - incremental font delivery over the patch-subset protocol

Usage:
  patchsubset serve -config <server.yaml>
  patchsubset fetch -server <url> -font <font_id> -cps <codepoints>
  patchsubset help
  patchsubset version

Commands:
  serve    Run an HTTP server exposing the protocol
  fetch    Drive one client exchange against a running server
  help     Show this help message
  version  Show version information`)
}

func printVersion() {
	fmt.Println("patchsubset version 0.1.0")
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to server config YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("missing -config")
	}

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	var fonts font.Provider
	if cfg.UseSystemFonts {
		fonts, err = font.NewSystemProvider()
		if err != nil {
			return fmt.Errorf("load system fonts: %w", err)
		}
	} else {
		fonts, err = font.NewDirectoryCache(os.DirFS(cfg.FontDir), ".")
		if err != nil {
			return fmt.Errorf("load fonts from %s: %w", cfg.FontDir, err)
		}
	}

	pred, err := cfg.Predictor.BuildPredictor()
	if err != nil {
		return err
	}

	srv := server.New(fonts, pred, cfg.UseRemapping, &requestlog.MemoryLogger{})
	handler := &transport.Handler{Server: srv}

	if counter, ok := fonts.(interface{ Len() int }); ok {
		fmt.Printf("listening on %s (%d fonts loaded)\n", cfg.ListenAddr, counter.Len())
	} else {
		fmt.Printf("listening on %s\n", cfg.ListenAddr)
	}
	return http.ListenAndServe(cfg.ListenAddr, handler)
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "Server base URL")
	fontID := fs.String("font", "", "Font identifier")
	codepoints := fs.String("cps", "", "Comma-separated codepoints (characters), e.g. \"a,b,c\"")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fontID == "" {
		return fmt.Errorf("missing -font")
	}

	var runes []rune
	for _, part := range strings.Split(*codepoints, ",") {
		part = strings.TrimSpace(part)
		for _, r := range part {
			runes = append(runes, r)
		}
	}

	state := client.Empty(*fontID)
	req, err := client.CreateRequest(runes, state)
	if err != nil {
		return err
	}
	if req.NoTransport {
		fmt.Println("nothing to fetch: client already has the requested codepoints")
		return nil
	}

	reqBytes := wire.EncodeRequest(req.Wire)
	respBytes, err := transport.Fetch(http.DefaultClient, *serverURL, *fontID, reqBytes)
	if err != nil {
		return err
	}

	resp, err := wire.DecodeResponse(respBytes)
	if err != nil {
		return err
	}

	newState, err := client.AmendState(resp, state)
	if err != nil {
		return err
	}

	fmt.Printf("response type: %s, patched font size: %d bytes\n", resp.Type, len(newState.FontData))
	return nil
}
