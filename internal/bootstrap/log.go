package bootstrap

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/cmd/flags"
	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/pkg/utils"
)

func init() {
	formatter := log.TextFormatter{
		ForceColors:               true,
		EnvironmentOverrideColors: true,
		TimestampFormat:           "2006-01-02 15:04:05",
		FullTimestamp:             true,
	}
	log.SetFormatter(&formatter)
	utils.Log.SetFormatter(&formatter)
}

func setLog(l *log.Logger) {
	if flags.Debug || flags.Dev {
		l.SetLevel(log.DebugLevel)
		l.SetReportCaller(true)
		return
	}
	level, err := log.ParseLevel(conf.Conf.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)
	l.SetReportCaller(false)
}

func InitLog() {
	setLog(log.StandardLogger())
	setLog(utils.Log)
	logConfig := conf.Conf.Log
	if logConfig.Enable {
		var w io.Writer = &lumberjack.Logger{
			Filename:   logConfig.Name,
			MaxSize:    logConfig.MaxSize,
			MaxBackups: logConfig.MaxBackups,
			MaxAge:     logConfig.MaxAge,
			Compress:   logConfig.Compress,
		}
		if flags.Debug || flags.Dev || flags.LogStd {
			w = io.MultiWriter(os.Stdout, w)
		}
		log.SetOutput(w)
		utils.Log.SetOutput(w)
	}
	log.Infof("init logrus...")
}
