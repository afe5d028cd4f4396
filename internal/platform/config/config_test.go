// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/centra/internal/platform/config"
)

func TestConfig_AllowedOrigins(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "https://admin.example.com", []string{"https://admin.example.com"}},
		{
			"trims_and_drops_blanks",
			" https://a.example.com , ,https://b.example.com,",
			[]string{"https://a.example.com", "https://b.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{ExtraOrigins: tt.value}
			assert.Equal(t, tt.want, cfg.AllowedOrigins())
		})
	}
}
