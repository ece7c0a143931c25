package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetVerbosity(t *testing.T) {
	tests := []struct {
		level int
		want  logrus.Level
	}{
		{level: -1, want: logrus.WarnLevel},
		{level: 0, want: logrus.WarnLevel},
		{level: 1, want: logrus.InfoLevel},
		{level: 2, want: logrus.DebugLevel},
		{level: 3, want: logrus.TraceLevel},
		{level: 9, want: logrus.TraceLevel},
	}
	for _, tc := range tests {
		SetVerbosity(tc.level)
		if got := Log.GetLevel(); got != tc.want {
			t.Errorf("SetVerbosity(%d): level %s, want %s", tc.level, got, tc.want)
		}
	}
}
