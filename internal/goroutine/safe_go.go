package goroutine

import (
	"runtime/debug"

	"github.com/ignatzorin/testhub-backend/internal/logger"
)

// SafeGo запускает fn в отдельной горутине и перехватывает panic, чтобы
// фоновая запись не уронила процесс. Паника логируется вместе со стеком.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("goroutine").Errorf("паника в фоновой горутине: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
