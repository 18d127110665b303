package state

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"

	"pageflow/config"
)

func TestEnvFromContext(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if EnvFromContext(ctx) != env {
		t.Error("EnvFromContext() must return the same environment for the same context")
	}
	if env.Cfg != nil || env.Rpt != nil || env.Log != nil || env.CodePage != nil {
		t.Errorf("new environment must be empty: %+v", env)
	}
	if env.NoDirs || env.Overwrite || env.DumpTree {
		t.Error("new environment must have all switches off")
	}

	defer func() {
		if recover() == nil {
			t.Error("EnvFromContext() must panic when environment is missing")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	first := env.Uptime()
	time.Sleep(5 * time.Millisecond)
	if second := env.Uptime(); second < first+5*time.Millisecond {
		t.Errorf("Uptime() = %v after %v, expected to grow", second, first)
	}
}

func TestLocalEnv_StdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Log = zap.New(core)

	env.RedirectStdLog()
	log.Print("from standard library")
	env.RestoreStdLog()
	log.SetOutput(discard{})
	defer log.SetOutput(os.Stderr)
	log.Print("after restore")

	if n := logs.FilterMessage("from standard library").Len(); n != 1 {
		t.Errorf("redirected messages = %d, want 1", n)
	}
	if n := logs.Len(); n != 1 {
		t.Errorf("messages after restore = %d, want 1", n)
	}

	// restoring twice and without logger is harmless
	env.RestoreStdLog()
	empty := EnvFromContext(ContextWithEnv(context.Background()))
	empty.RedirectStdLog()
	empty.RestoreStdLog()
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestLocalEnv_Fields(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Cfg = config.Default()
	env.CodePage = charmap.Windows1251
	env.NoDirs, env.Overwrite, env.DumpTree = true, true, true

	again := EnvFromContext(ContextWithEnv(context.Background()))
	if again.Cfg != nil || again.CodePage != nil || again.NoDirs {
		t.Error("every context must get its own environment")
	}
	if env.Cfg.Layout.MaxReflowPasses == 0 {
		t.Error("default configuration must be usable from environment")
	}
}
