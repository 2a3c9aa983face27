package annotate

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/FocuswithJustin/wikiwsd/core/engine"
)

// spaceEngine splits on whitespace runs. Units carry the following run as separator,
// leading whitespace becomes a SPACE unit.
type spaceEngine struct {
	delay  func(text string) time.Duration
	closed *atomic.Int32
}

func (e *spaceEngine) Annotate(text string) ([]engine.Unit, error) {
	if e.delay != nil {
		time.Sleep(e.delay(text))
	}
	return splitUnits(text), nil
}

func (e *spaceEngine) Close() error {
	if e.closed != nil {
		e.closed.Add(1)
	}
	return nil
}

func splitUnits(text string) []engine.Unit {
	var units []engine.Unit
	rs := []rune(text)
	i := 0
	if i < len(rs) && unicode.IsSpace(rs[i]) {
		j := i
		for j < len(rs) && unicode.IsSpace(rs[j]) {
			j++
		}
		units = append(units, engine.Unit{Text: string(rs[i:j]), Lemma: string(rs[i:j]), POS: "SPACE"})
		i = j
	}
	for i < len(rs) {
		j := i
		for j < len(rs) && !unicode.IsSpace(rs[j]) {
			j++
		}
		k := j
		for k < len(rs) && unicode.IsSpace(rs[k]) {
			k++
		}
		word := string(rs[i:j])
		units = append(units, engine.Unit{
			Text:       word,
			Lemma:      strings.ToLower(word),
			POS:        "X",
			Whitespace: string(rs[j:k]),
		})
		i = k
	}
	return units
}

// spaceFactory returns a factory producing spaceEngines and a counter of closed engines.
func spaceFactory(delay func(string) time.Duration) (engine.Factory, *atomic.Int32, *atomic.Int32) {
	built := &atomic.Int32{}
	closed := &atomic.Int32{}
	return func() (engine.Engine, error) {
		built.Add(1)
		return &spaceEngine{delay: delay, closed: closed}, nil
	}, built, closed
}

// brokenEngine drops the last character of any text containing "BROKEN".
func brokenEngine() engine.Factory {
	return func() (engine.Engine, error) {
		return engine.Func(func(text string) ([]engine.Unit, error) {
			units := splitUnits(text)
			if strings.Contains(text, "BROKEN") && len(units) > 0 {
				last := &units[len(units)-1]
				last.Whitespace = ""
				last.Text = last.Text[:len(last.Text)-1]
			}
			return units, nil
		}), nil
	}
}

// gateEngine blocks every Annotate call until release is closed and reports
// each started call on started.
type gateEngine struct {
	started chan string
	release chan struct{}
}

func newGate(buffer int) *gateEngine {
	return &gateEngine{
		started: make(chan string, buffer),
		release: make(chan struct{}),
	}
}

func (g *gateEngine) factory() engine.Factory {
	return func() (engine.Engine, error) {
		return engine.Func(func(text string) ([]engine.Unit, error) {
			g.started <- text
			<-g.release
			return splitUnits(text), nil
		}), nil
	}
}

var gateMu sync.Mutex

func (g *gateEngine) open() {
	gateMu.Lock()
	defer gateMu.Unlock()
	select {
	case <-g.release:
	default:
		close(g.release)
	}
}

func numbered(n int) []Input {
	inputs := make([]Input, n)
	for i := range inputs {
		inputs[i] = Input{Offset: i * 100, Text: fmt.Sprintf("paragraph %d has words", i)}
	}
	return inputs
}
