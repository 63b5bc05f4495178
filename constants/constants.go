package constants

import "os"

// MaxUploadBytes caps audio uploads at 50MB.
const MaxUploadBytes = 50 * 1024 * 1024

func GetUploadDir() string {
	if path := os.Getenv("TEMPOKEY_UPLOAD_DIR"); path != "" {
		return path
	}
	return "uploads"
}

func GetListenAddr() string {
	if addr := os.Getenv("TEMPOKEY_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

// GetDynamoEndpoint returns the DynamoDB endpoint for result
// persistence, or "" when persistence is disabled.
func GetDynamoEndpoint() string {
	return os.Getenv("TEMPOKEY_DYNAMO_ENDPOINT")
}

func GetDynamoTable() string {
	if table := os.Getenv("TEMPOKEY_DYNAMO_TABLE"); table != "" {
		return table
	}
	return "tempokey-results"
}

func GetDynamoRegion() string {
	if region := os.Getenv("TEMPOKEY_DYNAMO_REGION"); region != "" {
		return region
	}
	return "localhost"
}
