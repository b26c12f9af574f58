// Package util holds small helpers shared by the server and CLI packages.
package util
