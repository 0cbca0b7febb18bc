package oracle

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		description string
		text        string
		expect      Distribution
		expectErr   bool
	}{
		{
			description: "plain json",
			text:        `{"probabilities": {"c1": 0.6, "c2": 0.4}}`,
			expect:      Distribution{"c1": 0.6, "c2": 0.4},
		},
		{
			description: "markdown fence",
			text:        "```json\n{\"probabilities\": {\"main\": 1}}\n```",
			expect:      Distribution{"main": 1},
		},
		{
			description: "prose around",
			text:        "Here you go: {\"probabilities\": {\"a\": 0.5, \"b\": 0.5}} hope it helps",
			expect:      Distribution{"a": 0.5, "b": 0.5},
		},
		{description: "no json", text: "I can not decide", expectErr: true},
		{description: "missing key", text: `{"scores": {"a": 1}}`, expectErr: true},
		{description: "invalid json", text: `{"probabilities": {"a": }}`, expectErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := ParseResponse(tc.text)
			if tc.expectErr {
				assert.True(t, errors.Is(err, ErrMalformed), "unexpected error: %v", err)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expect, actual); diff != "" {
				t.Errorf("unexpected distribution (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)
	tests := []struct {
		description string
		dist        Distribution
		callers     []string
		expect      Distribution
		expectErr   bool
	}{
		{
			description: "already normalized",
			dist:        Distribution{"c1": 0.6, "c2": 0.3, "c3": 0.1},
			callers:     []string{"c1", "c2", "c3"},
			expect:      Distribution{"c1": 0.6, "c2": 0.3, "c3": 0.1},
		},
		{
			description: "unknown keys dropped and rescaled",
			dist:        Distribution{"c1": 0.5, "other": 0.5},
			callers:     []string{"c1", "c2"},
			expect:      Distribution{"c1": 1, "c2": 0},
		},
		{
			description: "negative and nan",
			dist:        Distribution{"a": -1, "b": math.NaN(), "c": 2},
			callers:     []string{"a", "b", "c"},
			expect:      Distribution{"a": 0, "b": 0, "c": 1},
		},
		{
			description: "all zero",
			dist:        Distribution{"a": 0},
			callers:     []string{"a", "b"},
			expectErr:   true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := Normalize(tc.dist, tc.callers)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expect, actual, approx); diff != "" {
				t.Errorf("unexpected distribution (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	static := Static{"f": {"c1": 0.6, "c2": 0.4}}
	dist, err := static.Estimate(context.Background(), &Request{Function: "f", Callers: []string{"c1", "c2"}})
	assert.NoError(t, err)
	dist["c1"] = 0
	again, _ := static.Estimate(context.Background(), &Request{Function: "f"})
	assert.Equal(t, 0.6, again["c1"])

	_, err = static.Estimate(context.Background(), &Request{Function: "g"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUniform(t *testing.T) {
	dist, err := Uniform{}.Estimate(context.Background(), &Request{Callers: []string{"a", "b", "c", "d"}})
	assert.NoError(t, err)
	assert.Equal(t, Distribution{"a": 0.25, "b": 0.25, "c": 0.25, "d": 0.25}, dist)
}

func TestCache(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, request *Request) (Distribution, error) {
		calls++
		if request.Function == "broken" {
			return nil, errors.New("unavailable")
		}
		return Distribution{request.Callers[0]: 1}, nil
	})
	cache := NewCache(inner)
	request := &Request{Function: "f", Callers: []string{"a", "b"}, Context: "def f(): pass"}

	first, err := cache.Estimate(context.Background(), request)
	assert.NoError(t, err)
	first["a"] = 0
	second, err := cache.Estimate(context.Background(), request)
	assert.NoError(t, err)
	assert.Equal(t, Distribution{"a": 1}, second)
	assert.Equal(t, 1, calls)

	_, err = cache.Estimate(context.Background(), &Request{Function: "f", Callers: []string{"b", "a"}})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	broken := &Request{Function: "broken", Callers: []string{"a"}}
	_, err = cache.Estimate(context.Background(), broken)
	assert.Error(t, err)
	_, err = cache.Estimate(context.Background(), broken)
	assert.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, cache.Len())
}

func TestHash(t *testing.T) {
	a, err := Hash([]byte("f\x00a"))
	assert.NoError(t, err)
	b, _ := Hash([]byte("f\x00a"))
	c, _ := Hash([]byte("f\x00b"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
