package variables

import (
	"log"
	"os"
	"strconv"
)

const (
	HTTP_PORT_DEFAULT = "8080"
	HTTP_PORT_NAME    = "HTTP_PORT"

	CONFIG_ENV_NAME    = "CONFIG_ENV"
	CONFIG_ENV_DEFAULT = "local"

	STAGE_TOKEN_NAME    = "STAGE_TOKEN"
	STAGE_TOKEN_DEFAULT = ""

	STAGE_ENDPOINT_NAME    = "STAGE_ENDPOINT"
	STAGE_ENDPOINT_DEFAULT = "ws://localhost:8080"

	STAGE_TOKEN_JWK_NAME    = "STAGE_TOKEN_JWK"
	STAGE_TOKEN_JWK_DEFAULT = ""

	STAGE_WORKAROUNDS_NAME    = "STAGE_WORKAROUNDS"
	STAGE_WORKAROUNDS_DEFAULT = "fixPublisherNoMicrophoneSound,fixPublisherVideoQuality,fixViewerAudioLevel"

	STAGE_ICE_SERVERS_NAME    = "STAGE_ICE_SERVERS"
	STAGE_ICE_SERVERS_DEFAULT = "stun:stun.l.google.com:19302"

	LOG_LEVEL_NAME    = "LOG_LEVEL"
	LOG_LEVEL_DEFAULT = "debug"

	LOG_SOURCE_NAME    = "LOG_SOURCE"
	LOG_SOURCE_DEFAULT = "false"

	WEBRTC_PLI_INTERVAL_MS         = "WEBRTC_PLI_INTERVAL_MS"
	WEBRTC_PLI_INTERVAL_MS_DEFAULT = "3000"
)

func Env(variableName, defaultValue string) string {
	if variable := os.Getenv(variableName); variable != "" {
		log.Printf("[%s]: %s", variableName, variable)
		return variable
	}
	log.Printf("[%s_DEFAULT]: %s", variableName, defaultValue)
	return defaultValue
}

func ParseInt(value string) (int, error) {
	return strconv.Atoi(value)
}
