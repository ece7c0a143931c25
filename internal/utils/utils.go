package utils

import (
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// SetVerbosity maps the -v integer onto logrus levels. Level 0 keeps the
// output quiet except for warnings and errors.
func SetVerbosity(level int) {
	switch {
	case level <= 0:
		Log.SetLevel(logrus.WarnLevel)
	case level == 1:
		Log.SetLevel(logrus.InfoLevel)
	case level == 2:
		Log.SetLevel(logrus.DebugLevel)
	default:
		Log.SetLevel(logrus.TraceLevel)
	}
}
