package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentParsing tests that 100 goroutines can parse simultaneously
// without race conditions or deadlocks.
func TestConcurrentParsing(t *testing.T) {
	manager := newTestManager()
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)

	source := []byte("export const A = () => <div>{1}</div>;")
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			tree, err := manager.Parse(source, LanguageTypeScript, true)
			if err != nil {
				errChan <- err
				return
			}
			tree.Close()
		}()
	}

	wg.Wait()
	close(errChan)

	var errors []error
	for err := range errChan {
		errors = append(errors, err)
	}
	assert.Empty(t, errors, "No errors should occur during concurrent parsing")

	stats := manager.GetStats()
	maxPoolSize := getDefaultPoolSize()
	assert.LessOrEqual(t, stats.ParsersCreated, maxPoolSize, "Should create at most %d parsers in pool", maxPoolSize)
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentLazyInitialization releases all goroutines at once against an
// empty manager so they race on pool creation.
func TestConcurrentLazyInitialization(t *testing.T) {
	manager := newTestManager()
	defer manager.Close()

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)
	startBarrier := make(chan struct{})

	source := []byte("function Test() { return <p/>; }")
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			<-startBarrier

			tree, err := manager.Parse(source, LanguageJavaScript, false)
			if err != nil {
				errChan <- err
				return
			}
			tree.Close()
		}()
	}

	close(startBarrier)
	wg.Wait()
	close(errChan)

	for err := range errChan {
		assert.NoError(t, err)
	}

	stats := manager.GetStats()
	assert.LessOrEqual(t, stats.ParsersCreated, getDefaultPoolSize())
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentParseDocument mixes every grammar through ParseDocument.
func TestConcurrentParseDocument(t *testing.T) {
	manager := newTestManager()
	defer manager.Close()

	files := []struct {
		name   string
		source string
		stmts  int
	}{
		{"a.ts", sampleTS, 2},
		{"a.tsx", sampleTSX, 3},
		{"a.jsx", sampleJS, 3},
	}

	const perFile = 20
	var wg sync.WaitGroup
	wg.Add(len(files) * perFile)

	type result struct {
		name  string
		stmts int
		err   error
	}
	results := make(chan result, len(files)*perFile)

	for _, f := range files {
		for i := 0; i < perFile; i++ {
			go func() {
				defer wg.Done()
				doc, err := manager.ParseDocument([]byte(f.source), f.name)
				if err != nil {
					results <- result{name: f.name, err: err}
					return
				}
				results <- result{name: f.name, stmts: len(doc.Program.Body.Stmts)}
			}()
		}
	}

	wg.Wait()
	close(results)

	want := map[string]int{}
	for _, f := range files {
		want[f.name] = f.stmts
	}
	for r := range results {
		assert.NoError(t, r.err)
		assert.Equal(t, want[r.name], r.stmts, r.name)
	}
}

// TestRaceConditions interleaves parsing with stats reads.
// Run with: go test -race ./pkg/parser
func TestRaceConditions(t *testing.T) {
	manager := newTestManager()
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			lang := SupportedLanguages()[id%len(SupportedLanguages())]
			tree, err := manager.Parse([]byte("const x = 1;"), lang, false)
			if err == nil && tree != nil {
				tree.Close()
			}
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			_ = manager.GetStats()
		}()
	}

	wg.Wait()
}

func BenchmarkParseDocument(b *testing.B) {
	manager := newTestManager()
	defer manager.Close()

	source := []byte(sampleTSX)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := manager.ParseDocument(source, "bench.tsx"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
