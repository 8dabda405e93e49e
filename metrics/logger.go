package metrics

import (
	"fmt"
	"log"
	"os"
	"path"
)

type Logger interface {
	Log(info *RunInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *RunInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

const defaultQueueSize = 100
const defaultMaxLogFileSize = 64 * 1024 * 1024

// FileLogger appends RunInfo documents to a log file in LogDir,
// rotating once to log.old when the file outgrows MaxLogFileSize.
// Writes are decoupled from the batch run through a queue; Close
// drains it before returning.
type FileLogger struct {
	RunQueue       chan *RunInfo
	LogDir         string
	MaxLogFileSize int64
	done           chan struct{}
}

func NewFileLogger(logDir string, maxLogFileSize int64) *FileLogger {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	logger := &FileLogger{
		RunQueue:       make(chan *RunInfo, defaultQueueSize),
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		done:           make(chan struct{}),
	}
	go logger.startLogWriter()
	return logger
}

func (l *FileLogger) Log(info *RunInfo) {
	l.RunQueue <- info
}

// Close flushes queued records and stops the writer.
func (l *FileLogger) Close() {
	close(l.RunQueue)
	<-l.done
}

func (l *FileLogger) logFilePath() string {
	return path.Join(l.LogDir, "runs.log")
}

func (l *FileLogger) startLogWriter() {
	defer close(l.done)

	f, err := l.openLogFile()
	if err != nil {
		log.Printf("FileLogger: log open error: %v", err)
	}

	for info := range l.RunQueue {
		infoStr, err := info.ToJSON()
		if err != nil {
			log.Printf("FileLogger: info.ToJSON() error: %v", err)
			continue
		}

		f, err = l.tryRotateLogFile(f)
		if err != nil {
			continue
		}

		if _, err := f.WriteString(infoStr); err != nil {
			log.Printf("FileLogger: write error: %v", err)
			continue
		}
		f.Sync()
	}

	if f != nil {
		f.Close()
	}
}

func (l *FileLogger) openLogFile() (*os.File, error) {
	return os.OpenFile(l.logFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (l *FileLogger) tryRotateLogFile(currFile *os.File) (*os.File, error) {
	if currFile == nil {
		return l.openLogFile()
	}

	info, err := currFile.Stat()
	if err != nil {
		log.Printf("FileLogger: log rotation error: %v", err)
		return currFile, nil
	}
	if info.Size() < l.MaxLogFileSize {
		return currFile, nil
	}

	currFile.Close()
	rotated := fmt.Sprintf("%s.old", l.logFilePath())
	if err := os.Rename(l.logFilePath(), rotated); err != nil {
		log.Printf("FileLogger: log rotation error: %v", err)
	}
	return l.openLogFile()
}
