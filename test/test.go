package test

import (
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

type CallWatcher struct {
	mu            sync.Mutex
	functionCalls map[string][][]interface{}
}

func NewCallWatcher() *CallWatcher {
	return &CallWatcher{functionCalls: make(map[string][][]interface{})}
}

func (w *CallWatcher) GetCall(funcName string) [][]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.functionCalls[w.key(funcName)]
}

func (w *CallWatcher) GetCallCount(funcName string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.functionCalls[w.key(funcName)])
}

// VerifyCount fails t when funcName was not called exactly want times.
// funcName may be the short method name, "Commit", or the fully qualified one.
func (w *CallWatcher) VerifyCount(funcName string, want int, t *testing.T) {
	t.Helper()
	if got := w.GetCallCount(funcName); got != want {
		t.Errorf("unexpected call count for %s got=%v want=%v", funcName, got, want)
	}
}

func (w *CallWatcher) AddCall(args ...interface{}) {
	pc := make([]uintptr, 15)
	n := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	funcName := frame.Function

	w.mu.Lock()
	defer w.mu.Unlock()
	calls := w.functionCalls[funcName]
	w.functionCalls[funcName] = append(calls, args)
}

func (w *CallWatcher) key(funcName string) string {
	if _, ok := w.functionCalls[funcName]; ok {
		return funcName
	}
	for k := range w.functionCalls {
		if strings.HasSuffix(k, "."+funcName) {
			return k
		}
	}
	return funcName
}

func ConfigLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}
