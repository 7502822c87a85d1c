// Package chatlog is the persistence collaborator: an append-only
// session log consuming already-finalized canonical messages, plus
// image artifact storage and transcript export. The core components
// (context manager, providers) never touch disk themselves - everything
// durable lands here.
package chatlog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/types"
)

const (
	sessionDirFormat  = "20060102_150405"
	displayTimeFormat = "2006-01-02 15:04:05"
	logFileName       = "chat.log"
)

// logEntry is one JSONL line in a session's chat.log
type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Logger writes chat history for one process into per-session
// directories under a base dir. Safe for concurrent use.
type Logger struct {
	mu sync.Mutex

	baseDir      string
	sessionDir   string // empty until a session starts
	logFile      string
	imageCounter int
	store        *Store
}

// NewLogger creates a logger rooted at baseDir, creating it if needed.
func NewLogger(baseDir string) (*Logger, error) {
	if strings.HasPrefix(baseDir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("chatlog: resolve home dir: %w", err)
		}
		baseDir = filepath.Join(home, strings.TrimPrefix(baseDir, "~"))
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("chatlog: create base dir: %w", err)
	}
	return &Logger{baseDir: baseDir}, nil
}

// AttachStore enables transcript indexing. Every logged message is also
// written to the store, keyed by the session directory name.
func (l *Logger) AttachStore(store *Store) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store = store
}

// StartSession begins a new timestamped session directory with an empty
// chat.log. Any previous session stays on disk untouched.
func (l *Logger) StartSession() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startSessionLocked()
}

func (l *Logger) startSessionLocked() error {
	dir := filepath.Join(l.baseDir, time.Now().Format(sessionDirFormat))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("chatlog: create session dir: %w", err)
	}

	logFile := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("chatlog: create log file: %w", err)
	}
	f.Close()

	l.sessionDir = dir
	l.logFile = logFile
	l.imageCounter = 0

	L_debug("chatlog: session started", "dir", dir)
	return nil
}

// ensureSessionLocked starts a session if none is active
func (l *Logger) ensureSessionLocked() error {
	if l.sessionDir != "" {
		return nil
	}
	return l.startSessionLocked()
}

// SessionPath returns the current session directory, or empty if no
// session has started.
func (l *Logger) SessionPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionDir
}

// LogMessage appends one chat message to the session log. Content may
// be a plain string, a types.Message, a types.ContentBlock, or a block
// slice; every block variant is rendered without losing its type tag.
func (l *Logger) LogMessage(role string, content any, metadata map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureSessionLocked(); err != nil {
		return err
	}

	now := time.Now()
	entry := logEntry{
		Timestamp: now.Format(time.RFC3339),
		Role:      role,
		Content:   renderContent(content, now.Format(displayTimeFormat)),
		Metadata:  metadata,
	}

	if err := l.appendLocked(entry); err != nil {
		return err
	}

	if l.store != nil {
		sessionKey := filepath.Base(l.sessionDir)
		if err := l.store.Index(sessionKey, role, entry.Content, now); err != nil {
			// index failures never block the primary log
			L_warn("chatlog: index write failed", "error", err)
		}
	}
	return nil
}

// appendLocked writes one JSON line to the session log
func (l *Logger) appendLocked(entry logEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("chatlog: marshal entry: %w", err)
	}

	f, err := os.OpenFile(l.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("chatlog: open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("chatlog: write entry: %w", err)
	}
	return nil
}

// renderContent formats message content for the log, prefixing each
// piece with a display timestamp.
func renderContent(content any, ts string) string {
	switch c := content.(type) {
	case string:
		return fmt.Sprintf("[%s]\n%s", ts, c)
	case types.Message:
		if !c.Content.IsBlocks() {
			return fmt.Sprintf("[%s]\n%s", ts, c.Content.Text)
		}
		return renderBlocks(c.Content.Blocks, ts)
	case types.ContentBlock:
		return renderBlock(c, ts)
	case []types.ContentBlock:
		return renderBlocks(c, ts)
	default:
		raw, err := json.Marshal(content)
		if err != nil {
			return fmt.Sprintf("[%s]\n%v", ts, content)
		}
		return fmt.Sprintf("[%s]\n%s", ts, string(raw))
	}
}

func renderBlocks(blocks []types.ContentBlock, ts string) string {
	rendered := make([]string, 0, len(blocks))
	for _, b := range blocks {
		rendered = append(rendered, renderBlock(b, ts))
	}
	return strings.Join(rendered, "\n")
}

func renderBlock(block types.ContentBlock, ts string) string {
	switch block.Type {
	case types.BlockText:
		return fmt.Sprintf("[%s]\n%s", ts, block.Text)
	case types.BlockToolUse:
		return fmt.Sprintf("[%s]\nTool Use: %s\nInput: %s", ts, block.Name, string(block.Input))
	case types.BlockToolResult:
		text := block.ResultText
		if block.ResultBlocks != nil {
			var parts []string
			for _, inner := range block.ResultBlocks {
				if inner.Type == types.BlockText {
					parts = append(parts, inner.Text)
				}
			}
			text = strings.Join(parts, "\n")
		}
		if block.IsError {
			return fmt.Sprintf("[%s]\nTool Error: %s", ts, text)
		}
		return fmt.Sprintf("[%s]\nTool Result: %s", ts, text)
	default:
		raw, _ := json.Marshal(block)
		return fmt.Sprintf("[%s]\n%s", ts, string(raw))
	}
}

// SaveImage decodes base64 image bytes into the session directory and
// logs a system entry pointing at the file.
func (l *Logger) SaveImage(base64Image, description string) (string, error) {
	l.mu.Lock()
	if err := l.ensureSessionLocked(); err != nil {
		l.mu.Unlock()
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		l.mu.Unlock()
		return "", fmt.Errorf("chatlog: decode image: %w", err)
	}

	l.imageCounter++
	filename := fmt.Sprintf("image_%s_%d.png", time.Now().Format("150405"), l.imageCounter)
	imagePath := filepath.Join(l.sessionDir, filename)

	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		l.mu.Unlock()
		return "", fmt.Errorf("chatlog: write image: %w", err)
	}
	l.mu.Unlock()

	if description != "" {
		if err := l.LogMessage(types.RoleSystem,
			fmt.Sprintf("Saved image: %s - %s", filename, description),
			map[string]any{"image_path": imagePath}); err != nil {
			return "", err
		}
	}

	L_debug("chatlog: image saved", "path", imagePath, "bytes", len(data))
	return imagePath, nil
}

// ToolOutput carries a tool execution result into the log
type ToolOutput struct {
	Output      string
	Error       string
	Base64Image string
}

// SaveToolResult logs a tool's output and/or error and stores any
// attached image artifact.
func (l *Logger) SaveToolResult(result ToolOutput, toolID string) error {
	metadata := map[string]any{
		"tool_id":   toolID,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if result.Error != "" {
		if err := l.LogMessage(types.RoleTool, "Error: "+result.Error, metadata); err != nil {
			return err
		}
	}
	if result.Output != "" {
		if err := l.LogMessage(types.RoleTool, result.Output, metadata); err != nil {
			return err
		}
	}
	if result.Base64Image != "" {
		if _, err := l.SaveImage(result.Base64Image, "Tool result image from "+toolID); err != nil {
			return err
		}
	}
	return nil
}

// ExportSession writes the current session in the requested format and
// returns the output path. Only "txt" is supported; anything else fails
// fast without touching disk.
func (l *Logger) ExportSession(format string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureSessionLocked(); err != nil {
		return "", err
	}
	if format != "txt" {
		return "", fmt.Errorf("chatlog: unsupported export format: %s", format)
	}

	data, err := os.ReadFile(l.logFile)
	if err != nil {
		return "", fmt.Errorf("chatlog: read log: %w", err)
	}

	var out strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return "", fmt.Errorf("chatlog: parse log line: %w", err)
		}
		ts := entry.Timestamp
		if parsed, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
			ts = parsed.Format(displayTimeFormat)
		}
		fmt.Fprintf(&out, "[%s] %s:\n%s\n\n", ts, strings.ToUpper(entry.Role), entry.Content)
	}

	outputFile := filepath.Join(l.sessionDir, "session_export.txt")
	if err := os.WriteFile(outputFile, []byte(out.String()), 0o644); err != nil {
		return "", fmt.Errorf("chatlog: write export: %w", err)
	}

	L_info("chatlog: session exported", "path", outputFile)
	return outputFile, nil
}
