// Package server holds configuration for the HTTP surface the desktop
// shell talks to. The Fiber application itself is assembled in the start
// command from the registered features.
package server
