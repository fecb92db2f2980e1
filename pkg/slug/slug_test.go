// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Solo Leveling", "solo-leveling"},
		{"Thám Tử Lừng Danh", "tham-tu-lung-danh"},
		{"Đại Quản Gia", "dai-quan-gia"},
		{"  One--Piece!! (2026) ", "one-piece-2026"},
		{"Pokémon: Ash & Pikachu", "pokemon-ash-pikachu"},
		{"進撃の巨人", ""},
		{"???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, From(tt.in))
		})
	}
}

func TestFrom_Truncates(t *testing.T) {
	got := From(strings.Repeat("chapter ", 20))

	assert.LessOrEqual(t, len(got), MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.True(t, strings.HasSuffix(got, "chapter"))
}
