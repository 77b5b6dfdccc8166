package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

const (
	defaultDatabasePath    = "classpulse.db"
	defaultListenAddr      = ":8080"
	defaultGatewayURL      = "http://localhost:8000"
	defaultCaptureInterval = 5
	defaultCameraDeviceID  = 0
	defaultFrameMaxSize    = 1280
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen address
	ListenAddr string

	// auth
	JWTSecret string

	// vision gateway configuration
	VisionGatewayURL string

	// capture loop settings
	CaptureIntervalSeconds int
	LocalCaptureEnabled    bool
	CameraDeviceID         int
	FrameMaxSize           int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := Config{
		DatabasePath:           getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		ListenAddr:             getEnvOrDefault("LISTEN_ADDR", defaultListenAddr),
		JWTSecret:              jwtSecret,
		VisionGatewayURL:       getEnvOrDefault("VISION_GATEWAY_URL", defaultGatewayURL),
		CaptureIntervalSeconds: getEnvIntOrDefault("CAPTURE_INTERVAL_SECONDS", defaultCaptureInterval),
		LocalCaptureEnabled:    getEnvBoolOrDefault("LOCAL_CAPTURE_ENABLED", false),
		CameraDeviceID:         getEnvIntOrDefault("CAMERA_DEVICE_ID", defaultCameraDeviceID),
		FrameMaxSize:           getEnvIntOrDefault("FRAME_MAX_SIZE", defaultFrameMaxSize),
	}

	return cfg, nil
}
