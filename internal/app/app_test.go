package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/callsift/callsift/internal/app"
	"github.com/callsift/callsift/internal/config"
	storemock "github.com/callsift/callsift/internal/store/mock"
	embeddingsmock "github.com/callsift/callsift/pkg/provider/embeddings/mock"
	"github.com/callsift/callsift/pkg/provider/transcribe"
	transcribemock "github.com/callsift/callsift/pkg/provider/transcribe/mock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "callsift.db")
	return cfg
}

func TestNew_WithMocks(t *testing.T) {
	t.Parallel()

	providers := &app.Providers{
		Transcribe: &transcribemock.Provider{Result: &transcribe.Result{Text: "hello"}},
		Embeddings: &embeddingsmock.Provider{},
	}
	application, err := app.New(context.Background(), testConfig(t), providers,
		app.WithStore(storemock.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if application.Engine() == nil {
		t.Error("Engine() = nil")
	}
	if application.Repository() == nil {
		t.Error("Repository() = nil")
	}
	if application.Learner() == nil {
		t.Error("Learner() = nil")
	}
	if application.Degraded() {
		t.Error("Degraded() = true on a fresh mock store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_NilProvidersDegrade(t *testing.T) {
	t.Parallel()

	application, err := app.New(context.Background(), testConfig(t), nil,
		app.WithStore(storemock.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if application.Engine() == nil {
		t.Fatal("Engine() = nil")
	}
	if err := application.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_OpensSQLiteFromConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	application, err := app.New(context.Background(), cfg, &app.Providers{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if application.Store() == nil {
		t.Fatal("Store() = nil")
	}

	// The learning side channel must work end to end against the real file.
	if _, err := application.Store().LoadPhrases(context.Background()); err != nil {
		t.Errorf("LoadPhrases: %v", err)
	}
	if err := application.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	application, err := app.New(context.Background(), testConfig(t), nil,
		app.WithStore(storemock.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := application.Shutdown(context.Background()); err != nil {
		t.Errorf("first Shutdown: %v", err)
	}
	if err := application.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
