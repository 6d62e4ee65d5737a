package main

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// flogger is what workers log through; ThreadLogger tags a worker's
// output so interleaved lines stay readable
type flogger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

type defaultLogger struct {
}

func (l *defaultLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

func (l *defaultLogger) Println(v ...interface{}) {
	log.Println(v...)
}

// ThreadLogger - a prefixed logger, one per worker
type ThreadLogger struct {
	name string
}

func (t *ThreadLogger) Printf(format string, v ...interface{}) {
	log.Printf("["+t.name+"] "+format, v...)
}

func (t *ThreadLogger) Println(v ...interface{}) {
	args := append([]interface{}{"[" + t.name + "]"}, v...)
	log.Println(args...)
}

type nullCloser struct {
}

func (nc *nullCloser) Close() error {
	return nil
}

// setupLogging routes the process log through a rotated file unless
// console output was asked for
func setupLogging(settings configSettings, console bool) (io.Closer, error) {
	logFile := settings.GetString(sLogFile)
	if console || logFile == "" {
		log.SetOutput(os.Stderr)
		return &nullCloser{}, nil
	}

	lj := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 5,
	}
	log.SetOutput(lj)
	return lj, nil
}
