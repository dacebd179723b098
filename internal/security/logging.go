// Package security provides structured JSON logging for security events.
// Every entry is a single JSON object so logs can be shipped to a SIEM
// without extra parsing.
package security

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// LogLevel classifies log entries.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType identifies the kind of security event being recorded.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventPermissionGranted  SecurityEventType = "PERMISSION_GRANTED"
	EventPermissionRevoked  SecurityEventType = "PERMISSION_REVOKED"
	EventPermissionDenied   SecurityEventType = "PERMISSION_DENIED"
	EventUserCreate         SecurityEventType = "USER_CREATE"
	EventUserUpdate         SecurityEventType = "USER_UPDATE"
	EventUserDeactivate     SecurityEventType = "USER_DEACTIVATE"
	EventUserDelete         SecurityEventType = "USER_DELETE"
	EventGroupCreate        SecurityEventType = "GROUP_CREATE"
	EventGroupDelete        SecurityEventType = "GROUP_DELETE"
	EventGroupMemberAdd     SecurityEventType = "GROUP_MEMBER_ADD"
	EventGroupMemberRemove  SecurityEventType = "GROUP_MEMBER_REMOVE"
	EventTokenIssued        SecurityEventType = "TOKEN_ISSUED"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
)

// LogEntry is the JSON shape of every log line.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Message    string                 `json:"message"`
	EventType  SecurityEventType      `json:"event_type,omitempty"`
	ActorID    *int                   `json:"actor_id,omitempty"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Status     int                    `json:"status,omitempty"`
	LatencyMS  int64                  `json:"latency_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Logger writes structured JSON log entries.
// The zero value is not usable; construct with NewLogger.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a Logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerWithOutput(os.Stdout)
}

// NewLoggerWithOutput creates a Logger writing to the given destination.
func NewLoggerWithOutput(w io.Writer) *Logger {
	return &Logger{
		output: log.New(w, "", 0),
	}
}

func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		// Marshal can only fail on unmarshalable Extra values; fall back
		// to a plain line rather than dropping the event.
		l.output.Printf(`{"timestamp":%q,"level":"ERROR","message":"log marshal failed: %v"}`,
			entry.Timestamp.Format(time.RFC3339), err)
		return
	}

	l.output.Println(string(data))
}

// Info logs an informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: message})
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: message})
}

// Error logs an error with its underlying cause (err may be nil).
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a fault that requires immediate attention (err may be nil).
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent records a security-relevant action with actor context.
// actorID is nil for unauthenticated events (e.g. failed logins).
func (l *Logger) SecurityEvent(event SecurityEventType, actorID *int, actorEmail, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:      LogLevelSecurity,
		Message:    string(event),
		EventType:  event,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest records a completed HTTP request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s %d (%dms)", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}
