package msg

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

//go:embed messages.yml
var defaultMessages []byte

var (
	mu       sync.RWMutex
	messages map[string]string
)

// init loads the embedded catalogue, then the file at MESSAGES_FILE_PATH when set
func init() {
	if err := load(viperFromBytes(defaultMessages)); err != nil {
		log.Fatalf("Fail to read embedded messages: %v", err)
	}

	if value, ok := os.LookupEnv("MESSAGES_FILE_PATH"); ok {
		if err := Init(value); err != nil {
			log.Fatalf("Fail to read messages: %v", err)
		}
	}
}

// Init merges the messages of the YAML file at filepath over the current catalogue.
func Init(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read messages file %s: %w", filepath, err)
	}

	return load(v)
}

func viperFromBytes(data []byte) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	_ = v.ReadConfig(bytes.NewReader(data))
	return v
}

func load(v *viper.Viper) error {
	settings := v.AllSettings()
	if len(settings) == 0 {
		return fmt.Errorf("no messages found")
	}

	mu.Lock()
	defer mu.Unlock()

	if messages == nil {
		messages = make(map[string]string)
	}
	flatten("", settings, messages)
	return nil
}

// flatten turns nested yml sections into dotted keys
func flatten(prefix string, data map[string]any, result map[string]string) {
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			flatten(fullKey, v, result)
		default:
			log.Printf("Ignoring key '%s' with unsupported type.", fullKey)
		}
	}
}

// GetMessage looks up key and replaces {0}, {1}... with the formatted args
func GetMessage(key string, args ...any) string {
	mu.RLock()
	message, exists := messages[key]
	mu.RUnlock()
	if !exists {
		return fmt.Sprintf("Message not found: %s", key)
	}

	for i, arg := range args {
		message = strings.ReplaceAll(message, "{"+strconv.Itoa(i)+"}", formatArg(arg))
	}
	return message
}

// formatArg renders scalars, Stringers and errors as text and anything else as JSON
func formatArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	encoded, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%v", arg)
	}
	return string(encoded)
}
