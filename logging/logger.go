package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func BoostrapLogger() {
	Log = &logrus.Logger{
		Out: nil,
		Formatter: &logrus.TextFormatter{
			FullTimestamp: true,
		},
		Level: logrus.DebugLevel,
	}

	// Lambda logs go through stdout, so does local.
	Log.SetReportCaller(true)
	Log.Out = os.Stdout

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		Log.SetLevel(lvl)
	}
}
