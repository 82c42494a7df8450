package models

import (
	"strings"
	"unicode/utf8"
)

// MaxConfigKeyLength bounds Configuration.Key.
const MaxConfigKeyLength = 50

// Configuration is one application setting stored as a key/value pair.
type Configuration struct {
	Key   string
	Value string
}

func (c *Configuration) Validate() error {
	v := &ValidationError{}
	validateConfigKey(v, c.Key)
	return v.Err()
}

func (c *Configuration) Read() ConfigurationRead {
	return ConfigurationRead{Key: c.Key, Value: c.Value}
}

type ConfigurationRead struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ConfigurationCreate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (c ConfigurationCreate) Validate() error {
	v := &ValidationError{}
	validateConfigKey(v, c.Key)
	return v.Err()
}

func (c ConfigurationCreate) New() *Configuration {
	return &Configuration{Key: strings.TrimSpace(c.Key), Value: c.Value}
}

// ConfigurationUpdate changes the value; the key is the primary key and
// cannot be renamed.
type ConfigurationUpdate struct {
	Value *string `json:"value,omitempty"`
}

func (u ConfigurationUpdate) Validate() error { return nil }

func (u ConfigurationUpdate) ApplyTo(c *Configuration) {
	if u.Value != nil {
		c.Value = *u.Value
	}
}

func validateConfigKey(v *ValidationError, key string) {
	n := utf8.RuneCountInString(strings.TrimSpace(key))
	switch {
	case n == 0:
		v.Add("key", "field required")
	case n > MaxConfigKeyLength:
		v.Add("key", "must be at most %d characters", MaxConfigKeyLength)
	}
}
