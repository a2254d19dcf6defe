// Package utils предоставляет простой файловый логгер для TUI приложений.
//
// TUI занимает терминал целиком, поэтому логи пишутся в .log файл
// с timestamp в имени. Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logFile     *os.File
	logMutex    sync.Mutex
	initialized bool
	debugOn     bool
)

// InitLogger создает/открывает .log файл.
//
// Имя файла: <prefix>-YYYY-MM-DD-HH-MM.log (например, poncho-chat-2025-12-27-15-30.log).
// dir == "" — текущая директория. Повторный вызов ничего не делает.
// Возвращает путь к файлу лога.
func InitLogger(dir, prefix string) (string, error) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized && logFile != nil {
		return logFile.Name(), nil
	}

	if prefix == "" {
		prefix = "poncho-chat"
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log", prefix, timestamp))

	var err error
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	initialized = true
	// Пишем напрямую без Info чтобы избежать deadlock (мьютекс уже захвачен)
	timestampNow := time.Now().Format("2006-01-02 15:04:05")
	initLine := fmt.Sprintf("[%s] INFO: Logger initialized file=%s\n", timestampNow, filename)

	if _, err := logFile.WriteString(initLine); err != nil {
		// Fallback на stderr при ошибке
		fmt.Fprintf(os.Stderr, "%s", initLine)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
	}

	return filename, nil
}

// SetDebug включает запись DEBUG сообщений (app.debug в config.yaml).
func SetDebug(enabled bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	debugOn = enabled
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение. Пишется только после SetDebug(true).
func Debug(msg string, keyvals ...any) {
	logMutex.Lock()
	on := debugOn
	logMutex.Unlock()
	if !on {
		return
	}
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

// FormatLine собирает строку лога.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
// Нечётный хвост keyvals пишется как key=<missing>.
func FormatLine(ts time.Time, level, msg string, keyvals ...any) string {
	line := fmt.Sprintf("[%s] %s: %s", ts.Format("2006-01-02 15:04:05"), level, msg)

	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
		} else {
			line += fmt.Sprintf(" %v=<missing>", keyvals[i])
		}
	}

	return line + "\n"
}

// log - внутренняя функция записи в лог.
//
// Без InitLogger сообщения отбрасываются (тесты, библиотечное использование).
// При ошибке записи в файл, fallback на stderr.
func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil {
		return
	}

	line := FormatLine(time.Now(), level, msg, keyvals...)

	// Пишем в файл с обработкой ошибок
	if _, err := logFile.WriteString(line); err != nil {
		// Fallback: если файл недоступен, пишем в stderr
		fmt.Fprintf(os.Stderr, "%s", line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
		}
		if err := logFile.Close(); err != nil {
			// Логгер уже закрывается, только stderr
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	initialized = false
}
