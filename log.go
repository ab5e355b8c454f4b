package cvrp

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	LOG_ERR = iota + 1
	LOG_INFO
	LOG_DEBUG
	LOG_SPAM
)

var (
	logSpam  *log.Logger
	logDebug *log.Logger
	logInfo  *log.Logger
	logErr   *log.Logger
	maxLvl   int
)

func InitLoggers(logLvl int) {
	InitLoggersTo(os.Stdout, logLvl)
}

func InitLoggersTo(w io.Writer, logLvl int) {
	maxLvl = logLvl
	logSpam = log.New(w, "SPAM ", log.Ldate|log.Ltime|log.Lshortfile)
	logDebug = log.New(w, "DEBUG ", log.Ldate|log.Ltime|log.Lshortfile)
	logInfo = log.New(w, "INFO ", log.Ldate|log.Ltime|log.Lshortfile)
	logErr = log.New(w, "ERROR ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Log(msgLvl int, printF string, args ...interface{}) {
	if msgLvl > maxLvl {
		return
	}
	switch msgLvl {
	case LOG_ERR:
		logErr.Output(2, fmt.Sprintf(printF, args...))
	case LOG_INFO:
		logInfo.Output(2, fmt.Sprintf(printF, args...))
	case LOG_DEBUG:
		logDebug.Output(2, fmt.Sprintf(printF, args...))
	case LOG_SPAM:
		logSpam.Output(2, fmt.Sprintf(printF, args...))
	}
}
