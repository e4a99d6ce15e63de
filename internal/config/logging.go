package config

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ApplyLogging sets the global logrus level and formatter.
func (l LogConfig) ApplyLogging() error {
	level := log.InfoLevel
	if l.Level != "" {
		var err error
		level, err = log.ParseLevel(l.Level)
		if err != nil {
			return errors.Wrap(err, "log.level")
		}
	}

	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	if l.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
