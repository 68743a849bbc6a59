package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"12", 12},
		{" 7 ", 7},
		{"0", 0},
		{"13", 0},
		{"-1", 0},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseMonth(tt.in))
		})
	}
}

func TestHalfYearMonth(t *testing.T) {
	t.Parallel()

	want := map[int]int{1: 7, 2: 8, 3: 9, 4: 10, 5: 11, 6: 12, 7: 1, 8: 2, 9: 3, 10: 4, 11: 5, 12: 6}
	for m, h := range want {
		assert.Equal(t, h, HalfYearMonth(m), "month %d", m)
		assert.Equal(t, m, HalfYearMonth(HalfYearMonth(m)), "month %d round trip", m)
	}
}

func TestMonthsAgo(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC), MonthsAgo(now, 48))
	// Feb 31 normalizes into March.
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), MonthsAgo(now, 1))
}

func TestCompareEventDesc(t *testing.T) {
	t.Parallel()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, CompareEventDesc(&newer, &older))
	assert.Equal(t, 1, CompareEventDesc(&older, &newer))
	assert.Equal(t, 0, CompareEventDesc(&older, &older))
	assert.Equal(t, -1, CompareEventDesc(&older, nil))
	assert.Equal(t, 1, CompareEventDesc(nil, &older))
	assert.Equal(t, 0, CompareEventDesc(nil, nil))
}

func TestNameQualityWorst(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NameClean, NameQuality("").Worst(NameClean))
	assert.Equal(t, NameRederived, NameClean.Worst(NameRederived))
	assert.Equal(t, NameRederived, NameRederived.Worst(NameClean))
	assert.Equal(t, NameUnusable, NameRederived.Worst(NameUnusable))
	assert.Equal(t, NameUnusable, NameUnusable.Worst(NameClean))
}

func TestHygieneHasErrorCode(t *testing.T) {
	t.Parallel()

	h := Hygiene{ErrorCodes: []string{"11.1", " 12.2"}}
	assert.True(t, h.HasErrorCode("12.2"))
	assert.False(t, h.HasErrorCode("12.3"))
	assert.False(t, Hygiene{}.HasErrorCode("12.2"))
}

func TestCustomerMonths(t *testing.T) {
	t.Parallel()

	c := Customer{EventMonth: 4}
	assert.True(t, c.HasRealMonth())
	assert.False(t, c.HasShadowMonth())

	c = Customer{ShadowMonth: 9}
	assert.False(t, c.HasRealMonth())
	assert.True(t, c.HasShadowMonth())
}

func TestCustomerEventAfter(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	at := cutoff
	before := cutoff.AddDate(0, 0, -1)

	assert.True(t, Customer{EventDate: &at}.EventAfter(cutoff))
	assert.False(t, Customer{EventDate: &before}.EventAfter(cutoff))
	assert.False(t, Customer{}.EventAfter(cutoff))
}
