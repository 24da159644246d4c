package gosearchgate

import (
	"fmt"
	"sync"
	"testing"
)

func TestSessionLastWriterWins(t *testing.T) {
	registry := NewSessionRegistry()
	registry.Update("c1", LanguagePPL, "s1")
	registry.Update("c1", LanguagePPL, "s2")

	sessionID, ok := registry.Resolve("c1", LanguagePPL)
	assertTrueF(t, ok)
	assertEqualE(t, sessionID, "s2")
}

func TestSessionKeysAreIndependent(t *testing.T) {
	registry := NewSessionRegistry()
	registry.Update("c1", LanguagePPL, "ppl-session")
	registry.Update("c1", LanguageSQL, "sql-session")
	registry.Update("c2", LanguagePPL, "other-conn")

	for _, tc := range []struct {
		connectionID string
		language     QueryLanguage
		expected     string
	}{
		{"c1", LanguagePPL, "ppl-session"},
		{"c1", LanguageSQL, "sql-session"},
		{"c2", LanguagePPL, "other-conn"},
	} {
		sessionID, ok := registry.Resolve(tc.connectionID, tc.language)
		assertTrueE(t, ok)
		assertEqualE(t, sessionID, tc.expected)
	}
}

func TestSessionResolveAbsent(t *testing.T) {
	registry := NewSessionRegistry()
	_, ok := registry.Resolve("nope", LanguageSQL)
	assertFalseE(t, ok)
}

func TestSessionClear(t *testing.T) {
	registry := NewSessionRegistry()
	registry.Update("c1", LanguageSQL, "s1")
	registry.Clear("c1", LanguageSQL)
	_, ok := registry.Resolve("c1", LanguageSQL)
	assertFalseE(t, ok, "cleared entry must force a fresh session")

	// clearing an absent entry is a no-op
	registry.Clear("c1", LanguageSQL)
}

func TestSessionConcurrentUpdates(t *testing.T) {
	registry := NewSessionRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connectionID := fmt.Sprintf("c%v", n%5)
			registry.Update(connectionID, LanguagePPL, fmt.Sprintf("s%v", n))
			registry.Resolve(connectionID, LanguagePPL)
		}(i)
	}
	wg.Wait()
	for i := 0; i < 5; i++ {
		_, ok := registry.Resolve(fmt.Sprintf("c%v", i), LanguagePPL)
		assertTrueE(t, ok)
	}
}
