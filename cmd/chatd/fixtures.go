package main

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guestflow/ragcore/internal/scorer"
	"github.com/guestflow/ragcore/internal/tenant"
)

// #endregion

// #region fixture-format

// Tenant and document persistence live in the platform backend; the
// daemon loads a JSON fixture so it can run standalone against real
// providers.
type fixtureFile struct {
	Tenants map[string]fixtureTenant `json:"tenants"`
}

type fixtureTenant struct {
	Settings    map[string]any               `json:"settings"`
	Credentials map[string]map[string]string `json:"credentials"`
	Chunks      []fixtureChunk               `json:"chunks"`
}

type fixtureChunk struct {
	Text   string    `json:"text"`
	Vector []float64 `json:"vector"`
}

// #endregion fixture-format

// #region fixture-store

// fixtureStore serves chunks, settings and credentials from a loaded
// fixture. It backs all three pipeline source ports.
type fixtureStore struct {
	tenants map[string]fixtureTenant
}

func loadFixtures(path string) (*fixtureStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var file fixtureFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if len(file.Tenants) == 0 {
		return nil, fmt.Errorf("fixtures contain no tenants")
	}
	return &fixtureStore{tenants: file.Tenants}, nil
}

func (s *fixtureStore) Chunks(ctx context.Context, tenantID string) ([]scorer.Chunk, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("unknown tenant %q", tenantID)
	}
	chunks := make([]scorer.Chunk, 0, len(t.Chunks))
	for _, c := range t.Chunks {
		chunks = append(chunks, scorer.Chunk{Text: c.Text, Vector: c.Vector})
	}
	return chunks, nil
}

func (s *fixtureStore) RecentTexts(ctx context.Context, tenantID string, limit int) ([]string, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("unknown tenant %q", tenantID)
	}
	// Newest chunks sit at the end of the fixture list.
	start := len(t.Chunks) - limit
	if start < 0 {
		start = 0
	}
	texts := make([]string, 0, limit)
	for _, c := range t.Chunks[start:] {
		texts = append(texts, c.Text)
	}
	return texts, nil
}

func (s *fixtureStore) Settings(ctx context.Context, tenantID string) (tenant.Settings, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return tenant.Settings{}, fmt.Errorf("unknown tenant %q", tenantID)
	}
	return tenant.FromDocument(tenant.DefaultSettings(), t.Settings), nil
}

func (s *fixtureStore) Credential(ctx context.Context, tenantID, provider, key string) (string, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return "", fmt.Errorf("unknown tenant %q", tenantID)
	}
	value := t.Credentials[provider][key]
	if value == "" {
		return "", fmt.Errorf("tenant %q has no %s %s configured", tenantID, provider, key)
	}
	return value, nil
}

// #endregion fixture-store
