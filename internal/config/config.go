// Package config resolves process configuration from the environment.
// A .env file in the working directory seeds variables that are not
// already set; every getter returns a *ConfigError naming the variable
// that is missing or malformed.
package config

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	// DefaultTTSVoice is used when AZURE_TTS_VOICE is not set.
	DefaultTTSVoice = "zh-TW-HsiaoChenNeural"

	// DefaultChatbaseURL is the public Chatbase chat endpoint.
	DefaultChatbaseURL = "https://www.chatbase.co/api/v1/chat"

	// DefaultLanguageCode drives synthesis voice selection, recognition
	// language and the answer-language directive when no override is given.
	DefaultLanguageCode = "zh-TW"
)

// ConfigError reports a missing or malformed environment variable.
type ConfigError struct {
	Var    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Var, e.Reason)
}

func missing(name string) error {
	return &ConfigError{Var: name, Reason: "is not set"}
}

// Load seeds the process environment from a .env file when one exists in
// the working directory. Variables already set in the environment win.
func Load() {
	_ = godotenv.Load()
}

// AzureConfig holds the speech-synthesis credentials.
type AzureConfig struct {
	Key    string
	Region string
	Voice  string
}

// GetAzureConfig reads AZURE_SPEECH_KEY, AZURE_SPEECH_REGION and the
// optional AZURE_TTS_VOICE.
func GetAzureConfig() (AzureConfig, error) {
	key := os.Getenv("AZURE_SPEECH_KEY")
	if key == "" {
		return AzureConfig{}, missing("AZURE_SPEECH_KEY")
	}
	region := os.Getenv("AZURE_SPEECH_REGION")
	if region == "" {
		return AzureConfig{}, missing("AZURE_SPEECH_REGION")
	}
	voice := os.Getenv("AZURE_TTS_VOICE")
	if voice == "" {
		voice = DefaultTTSVoice
	}
	return AzureConfig{Key: key, Region: region, Voice: voice}, nil
}

// ChatbaseConfig holds the chatbot endpoint credentials.
type ChatbaseConfig struct {
	APIKey string
	BotID  string
	APIURL string
}

// GetChatbaseConfig reads CHATBASE_API_KEY, CHATBASE_BOT_ID and the
// optional CHATBASE_API_URL.
func GetChatbaseConfig() (ChatbaseConfig, error) {
	key := os.Getenv("CHATBASE_API_KEY")
	if key == "" {
		return ChatbaseConfig{}, missing("CHATBASE_API_KEY")
	}
	botID := os.Getenv("CHATBASE_BOT_ID")
	if botID == "" {
		return ChatbaseConfig{}, missing("CHATBASE_BOT_ID")
	}
	url := os.Getenv("CHATBASE_API_URL")
	if url == "" {
		url = DefaultChatbaseURL
	}
	return ChatbaseConfig{APIKey: key, BotID: botID, APIURL: url}, nil
}

// GoogleConfig locates the Cloud Speech credentials, either as a file path
// or as inline JSON decoded from GOOGLE_CREDENTIALS_BASE64.
type GoogleConfig struct {
	CredentialsFile string
	CredentialsJSON []byte
}

// GetGoogleConfig reads GOOGLE_APPLICATION_CREDENTIALS or
// GOOGLE_CREDENTIALS_BASE64; at least one must be present.
func GetGoogleConfig() (GoogleConfig, error) {
	if encoded := os.Getenv("GOOGLE_CREDENTIALS_BASE64"); encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return GoogleConfig{}, &ConfigError{Var: "GOOGLE_CREDENTIALS_BASE64", Reason: "is not valid base64"}
		}
		return GoogleConfig{CredentialsJSON: raw}, nil
	}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		return GoogleConfig{CredentialsFile: path}, nil
	}
	return GoogleConfig{}, missing("GOOGLE_APPLICATION_CREDENTIALS")
}

// OpenAIConfig holds the key shared by the Whisper recognizer and the
// judge model.
type OpenAIConfig struct {
	APIKey string
}

// GetOpenAIConfig reads OPENAI_API_KEY.
func GetOpenAIConfig() (OpenAIConfig, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return OpenAIConfig{}, missing("OPENAI_API_KEY")
	}
	return OpenAIConfig{APIKey: key}, nil
}

// GetDefaultLanguageCode reads DEFAULT_LANGUAGE_CODE, falling back to
// DefaultLanguageCode.
func GetDefaultLanguageCode() string {
	if code := os.Getenv("DEFAULT_LANGUAGE_CODE"); code != "" {
		return code
	}
	return DefaultLanguageCode
}

// GetDatabaseURL reads DATABASE_URL. Empty means run persistence is
// disabled.
func GetDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// GetAdminToken reads ADMIN_TOKEN. Empty means mutating endpoints are
// unguarded.
func GetAdminToken() string {
	return os.Getenv("ADMIN_TOKEN")
}
