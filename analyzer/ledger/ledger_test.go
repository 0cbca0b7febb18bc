package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toa/analyzer/source"
)

func TestLedger_Record(t *testing.T) {
	ledger := New()
	ledger.Record("x", source.Name("y"))
	ledger.Record("z", source.Bind("x", source.Name("y")))
	ledger.Record("x", source.Literal("a"))

	assert.Equal(t, []string{"x", "z"}, ledger.Variables())

	var labels []string
	for entry := range ledger.Iterate("x") {
		labels = append(labels, entry.Label)
	}
	assert.Equal(t, []string{"x: y", `x: "a"`}, labels)

	trace := ledger.Trace("x")
	if assert.NotNil(t, trace) {
		assert.Equal(t, 2, trace.Len())
		assert.Nil(t, trace.Head().Prev())
		assert.Equal(t, trace.Tail(), trace.Head().Next())
		assert.Equal(t, trace.Head(), trace.Tail().Prev())
		assert.Nil(t, trace.Tail().Next())
	}
	assert.Nil(t, ledger.Trace("missing"))

	count := 0
	for range ledger.Iterate("missing") {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestLedger_IterateStop(t *testing.T) {
	ledger := New()
	for i := 0; i < 5; i++ {
		ledger.Record("v", source.Literal(int64(i)))
	}
	var seen []string
	for entry := range ledger.Iterate("v") {
		seen = append(seen, entry.Label)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"v: 0", "v: 1"}, seen)
}

func TestLedger_Concurrent(t *testing.T) {
	ledger := New()
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ledger.Record("shared", source.Literal(int64(j)))
				ledger.Record(fmt.Sprintf("v%d", i), source.Literal(int64(j)))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 400, ledger.Trace("shared").Len())
	assert.Len(t, ledger.Variables(), 9)

	count := 0
	for entry := ledger.Trace("shared").Head(); entry != nil; entry = entry.Next() {
		count++
	}
	assert.Equal(t, 400, count)
}

func TestLedger_Snapshot(t *testing.T) {
	ledger := New()
	ledger.Record("input_return", source.Call("input"))
	ledger.Record("data", source.Call("input"))
	snapshot := ledger.Snapshot()
	if assert.Len(t, snapshot, 2) {
		assert.Equal(t, "input_return", snapshot[0].Name)
		assert.Equal(t, "data: {func: input, args: []}", snapshot[1].Entries[0].Description)
		assert.True(t, snapshot[1].Entries[0].Value.Equal(source.Call("input")))
	}
}
