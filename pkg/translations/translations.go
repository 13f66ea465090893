package translations

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// TranslationHelperFunc looks up an override for a tool description by key,
// returning the default when no override is configured.
type TranslationHelperFunc func(key string, defaultValue string) string

// NullTranslationHelper always returns the default value.
func NullTranslationHelper(_ string, defaultValue string) string {
	return defaultValue
}

// TranslationHelper returns a helper that resolves description overrides
// from the environment (ACTIONS_TRIAGE_<KEY>) or from an optional
// actions-triage-mcp-server-config.json file in the working directory, plus
// a dump function that writes every key/value seen so far back to that file
// as a starting point for customization.
func TranslationHelper() (TranslationHelperFunc, func()) {
	var translationKeyMap = map[string]string{}
	v := viper.New()

	v.SetEnvPrefix("ACTIONS_TRIAGE")
	v.AutomaticEnv()

	v.SetConfigName("actions-triage-mcp-server-config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.WithError(err).Warn("could not read translation config file")
		}
	}

	var mu sync.Mutex
	return func(key string, defaultValue string) string {
			mu.Lock()
			defer mu.Unlock()

			key = strings.ToUpper(key)
			if value, ok := translationKeyMap[key]; ok {
				return value
			}

			value := v.GetString(key)
			if value == "" {
				value = defaultValue
			}

			translationKeyMap[key] = value
			return value
		}, func() {
			mu.Lock()
			defer mu.Unlock()
			dumpTranslationKeyMap(translationKeyMap)
		}
}

// dumpTranslationKeyMap writes the collected key/value pairs to a JSON file
// in the current working directory.
func dumpTranslationKeyMap(translationKeyMap map[string]string) {
	doc := viper.New()
	doc.SetConfigType("json")
	for k, val := range translationKeyMap {
		doc.Set(k, val)
	}
	if err := doc.WriteConfigAs("actions-triage-mcp-server-config.json"); err != nil {
		log.WithError(err).Error("could not write translation config file")
	}
}
