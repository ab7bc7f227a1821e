package log

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Redacted replaces registered secrets in log output.
const Redacted = "[REDACTED]"

var (
	secretsMu sync.RWMutex
	secrets   []string
)

// RegisterSecret marks s as sensitive. Every logger removes it from
// messages and string fields before writing.
func RegisterSecret(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	secretsMu.Lock()
	defer secretsMu.Unlock()
	for _, existing := range secrets {
		if existing == s {
			return
		}
	}
	secrets = append(secrets, s)
}

// Redact returns s with every registered secret replaced.
func Redact(s string) string {
	secretsMu.RLock()
	defer secretsMu.RUnlock()
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, Redacted)
	}
	return s
}

func resetSecrets() {
	secretsMu.Lock()
	secrets = nil
	secretsMu.Unlock()
}

type redactHook struct{}

func (redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (redactHook) Fire(entry *logrus.Entry) error {
	entry.Message = Redact(entry.Message)
	for k, v := range entry.Data {
		switch val := v.(type) {
		case string:
			entry.Data[k] = Redact(val)
		case error:
			entry.Data[k] = Redact(val.Error())
		}
	}
	return nil
}
