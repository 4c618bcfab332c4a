// Package `chatsrv` implements chat relay server over TCP.
//
// Clients send line-delimited JSON requests:
//
//	{"Send":{"author":"ann","content":"hello"}}
//	{"FetchSince":0}
//
// Configuration is read from environment (and optional .env file),
// command line flags override it. Run with -help to see the options.
//
// To compile chat server locally, run from package directory:
//
//	go install .
//
// Or quickly launch server with command:
//
//	go run .
package main
