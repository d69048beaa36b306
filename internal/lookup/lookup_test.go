// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aokidev/tana/internal/lookup"
)

/*
TestNormalizeDate covers the date formats the providers actually emit.
*/
func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{"google_full", "2026-10-02", "2026-10-02", true},
		{"google_year_month", "2026-10", "2026-10-01", true},
		{"google_year_only", "2026", "2026-01-01", true},
		{"rakuten_full", "2026年10月02日", "2026-10-02", true},
		{"rakuten_approximate", "2026年10月頃", "2026-10-01", true},
		{"slash_separated", "2026/10/02", "2026-10-02", true},
		{"impossible_date", "2026-02-30", "", false},
		{"month_out_of_range", "2026-13", "", false},
		{"no_year", "10月02日", "", false},
		{"empty", "", "", false},
		{"garbage", "coming soon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := lookup.NormalizeDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, date)
		})
	}
}
