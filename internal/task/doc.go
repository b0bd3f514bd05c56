// Package task runs background jobs for work that must not block request
// handling, card generation being the main one. Tasks persist before they
// run, so jobs interrupted by a restart are reloaded and resumed on the next
// startup.
package task
