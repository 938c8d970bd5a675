// Package cli implements the render command line: flag parsing and the
// one-shot, validate and watch runs.
//
// Example usage:
//
//	render -data profile.yaml card.html
//	render -template @https://example.com/card.html -data @https://api.example.com/me -o card.html
//	render -validate card.html
//	render -data profile.json -watch 30s -o card.html card.html
package cli
