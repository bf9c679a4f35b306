// Package config provides environment helpers for the webcam commands.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the environment does not override them.
const (
	DefaultCameraIndex = 0
	DefaultOutputDir   = "."
	DefaultLogLevel    = "info"
	DefaultServerPort  = "8080"
)

// CameraIndex returns the capture device from CAMERA_INDEX.
// Falls back to DefaultCameraIndex if unset or not a non-negative integer.
func CameraIndex() int {
	if v := os.Getenv("CAMERA_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultCameraIndex
}

// OutputDir returns the directory generated images are written to (IMGPROC_OUT).
func OutputDir() string {
	if dir := os.Getenv("IMGPROC_OUT"); dir != "" {
		return dir
	}
	return DefaultOutputDir
}

// LogLevel returns the log level from IMGPROC_LOG_LEVEL or the default.
func LogLevel() string {
	if lvl := os.Getenv("IMGPROC_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// ServerPort returns the histserver listen port from PORT or the default.
func ServerPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultServerPort
}
