// Package utils предоставляет вспомогательные функции для graceful shutdown.
//
// При SIGINT (Ctrl+C) или SIGTERM контекст приложения отменяется: текущий
// ход диалога и фоновая генерация подсказок получают ctx.Done() и
// завершаются, после чего отрабатывают cleanup функции и закрывается лог.
//
// Использование:
//   ctx, shutdown := utils.SetupGracefulShutdownWithContext(components.Close)
//   defer shutdown()
package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupGracefulShutdown устанавливает обработчик сигналов для graceful shutdown.
//
// Возвращает функцию которую следует вызвать через defer: она вызывает cancel,
// выполняет cleanups в обратном порядке и закрывает лог. Повторный вызов — no-op.
func SetupGracefulShutdown(cancel context.CancelFunc, cleanups ...func()) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
			for i := len(cleanups) - 1; i >= 0; i-- {
				cleanups[i]()
			}
			Close()
		})
	}
}

// SetupGracefulShutdownWithContext создаёт контекст и настраивает graceful shutdown.
func SetupGracefulShutdownWithContext(cleanups ...func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := SetupGracefulShutdown(cancel, cleanups...)
	return ctx, shutdown
}
