package translator

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// SessionLogger 单次文档翻译的专用日志记录器
// 每次翻译写独立的日志文件，可选同时输出到控制台；
// 所有降级结果（翻译回退、放置回退、组渲染失败）都经由它落盘。
type SessionLogger struct {
	logFile   *os.File
	logger    *log.Logger
	sessionID string
	mutex     sync.Mutex
}

// NewSessionLogger 创建会话日志记录器
func NewSessionLogger(logDir, sessionID string, enableConsole bool) (*SessionLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logFileName := fmt.Sprintf("translate_%s_%s.log", sessionID, timestamp)
	logFile, err := os.OpenFile(filepath.Join(logDir, logFileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("创建日志文件失败: %w", err)
	}

	var writer io.Writer = logFile
	if enableConsole {
		writer = io.MultiWriter(logFile, os.Stdout)
	}

	return &SessionLogger{
		logFile:   logFile,
		logger:    log.New(writer, "", log.LstdFlags),
		sessionID: sessionID,
	}, nil
}

// Info 记录信息级日志
func (l *SessionLogger) Info(msg string, fields map[string]interface{}) {
	l.write("INFO", msg, fields)
}

// Warn 记录警告级日志
func (l *SessionLogger) Warn(msg string, fields map[string]interface{}) {
	l.write("WARN", msg, fields)
}

// Error 记录错误级日志
func (l *SessionLogger) Error(msg string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	if err != nil {
		fields["错误"] = err.Error()
	}
	l.write("ERROR", msg, fields)
}

// Close 关闭日志文件
func (l *SessionLogger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}

// write 格式化并写入一条日志；nil接收者退化为标准日志，方便测试
func (l *SessionLogger) write(level, msg string, fields map[string]interface{}) {
	line := fmt.Sprintf("[%s] %s%s", level, msg, formatFields(fields))
	if l == nil {
		log.Print(line)
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.logger.Print(line)
}

// formatFields 字段按键排序后拼接，保证日志内容可复现
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " | " + strings.Join(parts, " ")
}
