// Package handlers implements the business logic for CLI commands.
//
// Each exported function backs one cobra command. The exported entry points
// bind the process streams; the unexported run* variants take writers so
// tests can capture output.
package handlers
