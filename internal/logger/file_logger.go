package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink writes events of backtest runs to a log file
type FileSink struct {
	symbol  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logDir  string
	minimum Severity
}

var severityRank = map[Severity]int{
	SeverityDebug: 0,
	SeverityInfo:  1,
	SeverityWarn:  2,
	SeverityError: 3,
}

// NewFileSink creates a file sink for the specified symbol inside logDir
func NewFileSink(logDir, symbol string, minimum Severity) (*FileSink, error) {
	if logDir == "" {
		logDir = "logs"
	}
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if symbol == "" {
		symbol = "UNKNOWN"
	}
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", symbol, timestamp)
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if _, ok := severityRank[minimum]; !ok {
		minimum = SeverityInfo
	}

	s := &FileSink{
		symbol:  symbol,
		logFile: file,
		logger:  log.New(file, "", 0),
		logDir:  logDir,
		minimum: minimum,
	}
	s.writeSessionHeader()

	return s, nil
}

// writeSessionHeader writes a session start header to the log
func (s *FileSink) writeSessionHeader() {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
BACKTEST SESSION STARTED
================================================================================
Symbol: %s
Started: %s
================================================================================`, s.symbol, time.Now().Format("2006-01-02 15:04:05"))

	s.logger.Print(header)
}

// Emit implements Sink
func (s *FileSink) Emit(e Event) {
	if severityRank[e.Severity] < severityRank[s.minimum] {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	s.logger.Println(fmt.Sprintf("[%s] %s", timestamp, e.String()))
}

// Close closes the log file
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.logFile == nil {
		return nil
	}
	s.logger.Printf("[%s] session ended\n", time.Now().Format("2006-01-02 15:04:05"))
	err := s.logFile.Close()
	s.logFile = nil
	return err
}

// GetLogPath returns the current log file path
func (s *FileSink) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	return filepath.Join(s.logDir, fmt.Sprintf("%s_%s.log", s.symbol, timestamp))
}
