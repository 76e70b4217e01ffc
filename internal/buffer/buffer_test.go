package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceBuffer(t *testing.T) {
	b := NewSourceBuffer("hello")
	assert.Equal(t, "hello", b.Text())
	assert.Equal(t, uint64(0), b.Version())
}

func TestEmptyStringIsValid(t *testing.T) {
	b := NewSourceBuffer("")
	assert.Equal(t, "", b.Text())

	b.Set("")
	assert.Equal(t, "", b.Text())
	assert.Equal(t, uint64(1), b.Version())
}

func TestSetReplacesWholesale(t *testing.T) {
	b := NewSourceBuffer("first")

	b.Set("second")
	assert.Equal(t, "second", b.Text())

	// Syntactically invalid text is accepted as-is.
	b.Set("function App() {")
	assert.Equal(t, "function App() {", b.Text())
	assert.Equal(t, uint64(2), b.Version())
}

func TestOnChangeNotifiesWithNewText(t *testing.T) {
	b := NewSourceBuffer("")

	var got []string
	b.OnChange(func(text string) {
		got = append(got, text)
	})

	b.Set("a")
	b.Set("ab")

	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "ab"}, got)
}

func TestMultipleHandlers(t *testing.T) {
	b := NewSourceBuffer("")

	calls := 0
	b.OnChange(func(string) { calls++ })
	b.OnChange(func(string) { calls++ })

	b.Set("x")
	assert.Equal(t, 2, calls)
}

func TestConcurrentAccess(t *testing.T) {
	b := NewSourceBuffer("seed")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Set("update")
		}()
		go func() {
			defer wg.Done()
			_ = b.Text()
		}()
	}
	wg.Wait()

	assert.Equal(t, "update", b.Text())
	assert.Equal(t, uint64(8), b.Version())
}

func TestStarterSourceIsACounter(t *testing.T) {
	assert.Contains(t, StarterSource, "function App()")
	assert.Contains(t, StarterSource, "Count: {count}")
	assert.Contains(t, StarterSource, "onClick")
}
